package push

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"xdrive-driver/internal/driver-client/core/domain/dto"
	"xdrive-driver/internal/mylogger"

	"github.com/gorilla/websocket"
)

const messageTypeRideOffer = "ride_offer"

type authMessage struct {
	Type string `json:"type"`
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

type envelope struct {
	Type    string          `json:"type"`
	OfferID string          `json:"offer_id"`
	Ride    json.RawMessage `json:"ride"`
}

// Feed receives ride offers pushed by the server over a websocket. Only the
// data contract matters here; when the feed is down the app falls back to
// polling.
type Feed struct {
	wsBaseURL string
	mylog     mylogger.Logger
}

func NewFeed(wsBaseURL string, mylog mylogger.Logger) *Feed {
	return &Feed{
		wsBaseURL: strings.TrimRight(wsBaseURL, "/"),
		mylog:     mylog,
	}
}

// Listen dials the driver channel, authenticates, and forwards ride offers
// until ctx is cancelled or the connection drops.
func (f *Feed) Listen(ctx context.Context, driverID, token string, offers chan<- dto.RideOffer) error {
	url := fmt.Sprintf("%s/ws/drivers/%s", f.wsBaseURL, driverID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connecting to offer feed: %w", err)
	}
	defer conn.Close()

	auth := authMessage{Type: "auth"}
	auth.Data.Token = token
	if err := conn.WriteJSON(auth); err != nil {
		return fmt.Errorf("sending auth message: %w", err)
	}

	f.mylog.Action("offer_feed_connected").Info("listening for ride offers", "driver_id", driverID)

	// Unblock ReadMessage on cancellation.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading offer feed: %w", err)
		}

		var msg envelope
		if err := json.Unmarshal(payload, &msg); err != nil {
			f.mylog.Warn("dropping unreadable feed message", "error", err.Error())
			continue
		}
		if msg.Type != messageTypeRideOffer {
			continue
		}

		var offer dto.RideOffer
		offer.OfferID = msg.OfferID
		if err := json.Unmarshal(msg.Ride, &offer.Ride); err != nil {
			f.mylog.Warn("dropping malformed ride offer", "offer_id", msg.OfferID, "error", err.Error())
			continue
		}

		select {
		case offers <- offer:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
