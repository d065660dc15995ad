package driverclient

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"xdrive-driver/internal/config"
	"xdrive-driver/internal/driver-client/adapters/driven/api"
	"xdrive-driver/internal/driver-client/adapters/driven/geo"
	"xdrive-driver/internal/driver-client/adapters/driven/push"
	"xdrive-driver/internal/driver-client/adapters/driven/storage"
	"xdrive-driver/internal/driver-client/core/domain/dto"
	"xdrive-driver/internal/driver-client/core/domain/model"
	"xdrive-driver/internal/driver-client/core/services"
	"xdrive-driver/internal/mylogger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// App wires the driver client: one store, one gateway, the services on
// top, and the simulated device position provider.
type App struct {
	cfg   *config.Config
	mylog mylogger.Logger

	Session       *services.SessionService
	Positions     *services.PositionCache
	Tracker       *services.LocationTracker
	Availability  *services.AvailabilityController
	Rides         *services.RidesCatalog
	Notifications *services.NotificationService

	client   *api.Client
	vouchers *storage.VoucherStore
	feed     *push.Feed
	sim      *geo.Simulator
}

func New(cfg *config.Config, mylog mylogger.Logger) (*App, error) {
	store, err := storage.NewFileStore(cfg.Storage.StateFile)
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:   cfg,
		mylog: mylog,
	}

	gw := api.NewGateway(cfg.Server.BaseURL, cfg.Server.Timeout, cfg.Server.RetryAttempts, func() string {
		return app.Session.Token()
	}, mylog)
	app.client = api.NewClient(gw)

	app.Session = services.NewSessionService(store, app.client, cfg.Session.TTL, mylog)
	app.Positions = services.NewPositionCache(store, mylog)

	// Device GPS stand-in, starting around Nice.
	app.sim = geo.NewSimulator(model.PositionSample{Latitude: 43.7102, Longitude: 7.2620}, true)

	app.Tracker = services.NewLocationTracker(app.sim, app.client, app.Positions, store, services.TrackerConfig{
		MinDistanceMeters: cfg.Location.MinDistanceMeters,
		MinInterval:       cfg.Location.MinInterval,
		ReplayMaxAge:      cfg.Location.ReplayMaxAge,
	}, mylog)

	app.Availability = services.NewAvailabilityController(store, app.Tracker, app.client, app.Positions, func() string {
		session, _ := app.Session.Session()
		return session.DriverID
	}, mylog)

	app.Rides = services.NewRidesCatalog(app.client, mylog)
	app.Notifications = services.NewNotificationService(store, app.client, mylog)
	app.vouchers = storage.NewVoucherStore(cfg.Storage.VoucherDir)
	app.feed = push.NewFeed(wsBaseURL(cfg.Server.BaseURL), mylog)

	return app, nil
}

func wsBaseURL(httpBase string) string {
	switch {
	case strings.HasPrefix(httpBase, "https://"):
		return "wss://" + strings.TrimPrefix(httpBase, "https://")
	case strings.HasPrefix(httpBase, "http://"):
		return "ws://" + strings.TrimPrefix(httpBase, "http://")
	default:
		return httpBase
	}
}

type RunOptions struct {
	Email    string
	Password string
	// RideLimit stops the app after this many completed rides; 0 means
	// run until interrupted.
	RideLimit int
	// Once polls pending rides a single time instead of looping.
	Once bool
}

// Run signs the driver in, goes on duty, and works offers from the push
// feed and the poller until interrupted or the ride limit is reached.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	shutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if !a.Session.IsLoggedIn(shutdown) {
		session, err := a.Session.Login(shutdown, opts.Email, opts.Password)
		if err != nil {
			return err
		}
		a.mylog.Info("logged in", "driver_id", session.DriverID)
	}

	if _, ok := a.Notifications.SavedToken(); !ok {
		// No push transport here; a synthetic device token keeps the
		// registration contract exercised.
		if err := a.Notifications.Register(shutdown, "sim-"+uuid.NewString()); err != nil {
			a.mylog.Warn("continuing without push registration", "error", err.Error())
		}
	}

	if _, err := a.Availability.Sync(shutdown); err != nil {
		a.mylog.Warn("availability sync failed", "error", err.Error())
	}

	if err := a.Availability.SetAvailable(shutdown, true, nil); err != nil {
		return err
	}
	defer func() {
		a.Tracker.Stop()
		offCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.Timeout)
		defer cancel()
		if err := a.Availability.SetAvailable(offCtx, false, nil); err != nil {
			a.mylog.Warn("going off duty failed", "error", err.Error())
		}
	}()

	session, _ := a.Session.Session()
	offers := make(chan dto.RideOffer, 8)

	g, runCtx := errgroup.WithContext(shutdown)

	g.Go(func() error {
		err := a.feed.Listen(runCtx, session.DriverID, session.Token, offers)
		if err != nil && runCtx.Err() == nil {
			// Feed loss is survivable; the poller keeps offers coming.
			a.mylog.Warn("offer feed unavailable, relying on polling", "error", err.Error())
		}
		return nil
	})

	g.Go(func() error {
		return a.poll(runCtx, offers, opts.Once)
	})

	g.Go(func() error {
		return a.workOffers(runCtx, offers, opts.RideLimit)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, errRideLimit) {
		err = nil
	}
	a.mylog.Info("shutting down")
	return err
}

// poll fetches pending rides on the configured interval and feeds them to
// the offer channel. Fetch failures are logged and retried next tick.
func (a *App) poll(ctx context.Context, offers chan<- dto.RideOffer, once bool) error {
	ticker := time.NewTicker(a.cfg.Rides.PollInterval)
	defer ticker.Stop()

	for {
		rides, err := a.Rides.PendingRides(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.mylog.Warn("pending rides fetch failed", "error", err.Error())
		}
		for _, ride := range rides {
			select {
			case offers <- dto.RideOffer{Ride: ride}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if once {
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// errRideLimit unwinds the worker group once enough rides are done.
var errRideLimit = errors.New("ride limit reached")

// workOffers consumes offers one at a time, skipping rides already seen,
// and drives each accepted ride to completion.
func (a *App) workOffers(ctx context.Context, offers <-chan dto.RideOffer, limit int) error {
	seen := make(map[string]bool)
	completed := 0

	for {
		select {
		case offer := <-offers:
			if offer.Ride.ID == "" || seen[offer.Ride.ID] {
				continue
			}
			seen[offer.Ride.ID] = true

			if err := a.executeRide(ctx, offer.Ride); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				a.mylog.Error("ride abandoned", err, "ride_id", offer.Ride.ID)
				continue
			}

			completed++
			if limit > 0 && completed >= limit {
				a.mylog.Info("stopping after ride limit", "completed", completed)
				return errRideLimit
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// executeRide accepts a ride and walks it through its lifecycle, moving
// the simulated device to pickup and dropoff between transitions.
func (a *App) executeRide(ctx context.Context, ride model.Ride) error {
	flow := services.NewRideFlow(ride, a.client, a.vouchers, a.mylog)

	if err := flow.Accept(ctx); err != nil {
		return err
	}

	const speedMPS = 12.0
	drive := func(lat, lng float64) {
		if lat == 0 && lng == 0 {
			return
		}
		target := model.PositionSample{Latitude: lat, Longitude: lng}
		if err := a.sim.Drive(ctx, target, speedMPS, time.Second); err != nil {
			a.mylog.Warn("drive interrupted", "ride_id", ride.ID, "error", err.Error())
		}
	}

	if err := flow.Advance(ctx, model.StatusEnRoute); err != nil {
		return err
	}
	drive(ride.PickupLat, ride.PickupLng)

	if err := flow.Advance(ctx, model.StatusArrived); err != nil {
		return err
	}
	if err := flow.Advance(ctx, model.StatusInProgress); err != nil {
		return err
	}
	drive(ride.DropoffLat, ride.DropoffLng)

	if err := flow.Advance(ctx, model.StatusCompleted); err != nil {
		return err
	}

	if flow.Ride().PaymentMethod == model.PaymentCash {
		if err := flow.CollectCash(); err != nil {
			return err
		}
	}

	a.mylog.Action("ride_done").Info("ride finished", "ride_id", ride.ID, "status", flow.Status().String())
	return nil
}
