package geo

import (
	"context"
	"sync"
	"time"

	"xdrive-driver/internal/driver-client/core/domain/model"
	"xdrive-driver/internal/driver-client/core/myerrors"
	"xdrive-driver/internal/driver-client/core/ports/driven"
)

// Simulator is a position provider that stands in for the device GPS. The
// app drives it toward targets; tests feed it fixes directly.
type Simulator struct {
	mu      sync.Mutex
	granted bool
	current model.PositionSample
	subs    map[int]*subscription
	nextID  int
	clock   func() time.Time
}

func NewSimulator(start model.PositionSample, granted bool) *Simulator {
	return &Simulator{
		granted: granted,
		current: start,
		subs:    make(map[int]*subscription),
		clock:   time.Now,
	}
}

// SetPermission flips the simulated OS permission grant.
func (s *Simulator) SetPermission(granted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.granted = granted
}

func (s *Simulator) RequestPermission(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.granted, nil
}

func (s *Simulator) CurrentPosition(ctx context.Context) (model.PositionSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.granted {
		return model.PositionSample{}, myerrors.New(myerrors.KindPermissionDenied, "location permission not granted")
	}

	fix := s.current
	fix.CapturedAt = s.clock()
	return fix, nil
}

func (s *Simulator) Watch(ctx context.Context, opts driven.WatchOptions) (driven.PositionSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.granted {
		return nil, myerrors.New(myerrors.KindPermissionDenied, "location permission not granted")
	}

	sub := &subscription{
		sim:     s,
		id:      s.nextID,
		opts:    opts,
		updates: make(chan model.PositionSample, 16),
	}
	s.subs[s.nextID] = sub
	s.nextID++
	return sub, nil
}

// Advance moves the simulated device to a new fix and fans it out to
// subscriptions whose distance/interval gate passes.
func (s *Simulator) Advance(sample model.PositionSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sample.CapturedAt.IsZero() {
		sample.CapturedAt = s.clock()
	}
	s.current = sample

	for _, sub := range s.subs {
		sub.offer(sample)
	}
}

// Drive steps toward target at speed meters/second, emitting a fix per
// tick, until arrival or ctx cancellation. Adapted from the ride-hail
// helper's movement loop.
func (s *Simulator) Drive(ctx context.Context, target model.PositionSample, speedMPS float64, tick time.Duration) error {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	total := current.DistanceMeters(target)
	stepDistance := speedMPS * tick.Seconds()
	if total < 1 {
		return nil
	}

	steps := int(total / stepDistance)
	if steps < 1 {
		steps = 1
	}

	dLat := (target.Latitude - current.Latitude) / float64(steps)
	dLng := (target.Longitude - current.Longitude) / float64(steps)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for i := 0; i < steps; i++ {
		select {
		case <-ticker.C:
			current.Latitude += dLat
			current.Longitude += dLng
			s.Advance(model.PositionSample{
				Latitude:  current.Latitude,
				Longitude: current.Longitude,
				Accuracy:  5.0,
			})
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.Advance(model.PositionSample{
		Latitude:  target.Latitude,
		Longitude: target.Longitude,
		Accuracy:  5.0,
	})
	return nil
}

func (s *Simulator) drop(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

type subscription struct {
	sim     *Simulator
	id      int
	opts    driven.WatchOptions
	updates chan model.PositionSample

	once     sync.Once
	hasLast  bool
	last     model.PositionSample
	lastSent time.Time
}

func (sub *subscription) Updates() <-chan model.PositionSample {
	return sub.updates
}

func (sub *subscription) Stop() {
	sub.once.Do(func() {
		sub.sim.drop(sub.id)
		close(sub.updates)
	})
}

// offer applies the distance/interval gate. Called with the simulator lock
// held; sends never block, a slow consumer just misses fixes.
func (sub *subscription) offer(sample model.PositionSample) {
	if sub.hasLast {
		moved := sub.last.DistanceMeters(sample)
		elapsed := sample.CapturedAt.Sub(sub.lastSent)
		if moved < sub.opts.MinDistanceMeters && elapsed < sub.opts.MinInterval {
			return
		}
	}

	select {
	case sub.updates <- sample:
		sub.hasLast = true
		sub.last = sample
		sub.lastSent = sample.CapturedAt
	default:
	}
}
