package driven

import (
	"context"

	"xdrive-driver/internal/driver-client/core/domain/dto"
)

// OfferFeed is the push channel for ride offers. A feed failure is not
// fatal; callers fall back to polling.
type OfferFeed interface {
	// Listen blocks, delivering offers to the channel until ctx is
	// cancelled or the connection drops.
	Listen(ctx context.Context, driverID, token string, offers chan<- dto.RideOffer) error
}
