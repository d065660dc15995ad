package services

import (
	"context"
	"io"
	"sync"

	"xdrive-driver/internal/driver-client/core/domain/dto"
	"xdrive-driver/internal/driver-client/core/domain/model"
	"xdrive-driver/internal/driver-client/core/ports/driven"
	"xdrive-driver/internal/mylogger"
)

func testLogger() mylogger.Logger {
	log, err := mylogger.NewWithWriter(mylogger.LevelError, io.Discard)
	if err != nil {
		panic(err)
	}
	return log
}

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
	// failSet makes every Set return this error when non-nil.
	failSet error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (s *fakeStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	return val, ok, nil
}

func (s *fakeStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return s.failSet
	}
	s.data[key] = value
	return nil
}

func (s *fakeStore) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *fakeStore) get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key]
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

type fakeAuthAPI struct {
	mu sync.Mutex

	loginResp  dto.LoginResponse
	loginErr   error
	loginCalls int
	lastLogin  dto.LoginRequest

	profileDriver model.Driver
	profileErr    error
	profileCalls  int

	updateDriver model.Driver
	updateErr    error

	pushTokens []string
	pushErr    error
}

func (f *fakeAuthAPI) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	f.lastLogin = req
	return f.loginResp, f.loginErr
}

func (f *fakeAuthAPI) Profile(ctx context.Context) (model.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	return f.profileDriver, f.profileErr
}

func (f *fakeAuthAPI) UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (model.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateDriver, f.updateErr
}

func (f *fakeAuthAPI) RegisterPushToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushTokens = append(f.pushTokens, token)
	return f.pushErr
}

type fakeTelemetryAPI struct {
	mu sync.Mutex

	availability []bool
	availErr     error

	locations []dto.LocationUpdate
	locErr    error

	statusAvailable bool
	statusErr       error
}

func (f *fakeTelemetryAPI) UpdateAvailability(ctx context.Context, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.availability = append(f.availability, available)
	return f.availErr
}

func (f *fakeTelemetryAPI) AvailabilityStatus(ctx context.Context) (bool, error) {
	return f.statusAvailable, f.statusErr
}

func (f *fakeTelemetryAPI) PushLocation(ctx context.Context, update dto.LocationUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations = append(f.locations, update)
	return f.locErr
}

func (f *fakeTelemetryAPI) locationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.locations)
}

func (f *fakeTelemetryAPI) lastLocation() (dto.LocationUpdate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.locations) == 0 {
		return dto.LocationUpdate{}, false
	}
	return f.locations[len(f.locations)-1], true
}

type fakeRidesAPI struct {
	mu sync.Mutex

	pending    []model.Ride
	pendingErr error

	details    model.Ride
	detailsErr error

	acceptResp  dto.AcceptRideResponse
	acceptErr   error
	acceptCalls int

	declineErr error

	statusErr   error
	statusCalls []model.RideStatus

	voucherData []byte
	voucherErr  error

	history    dto.RideHistoryPage
	historyErr error

	stats    dto.DriverStats
	statsErr error
}

func (f *fakeRidesAPI) AvailableRides(ctx context.Context) ([]model.Ride, error) {
	return f.pending, f.pendingErr
}

func (f *fakeRidesAPI) RideDetails(ctx context.Context, rideID string) (model.Ride, error) {
	return f.details, f.detailsErr
}

func (f *fakeRidesAPI) AcceptRide(ctx context.Context, rideID string) (dto.AcceptRideResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acceptCalls++
	return f.acceptResp, f.acceptErr
}

func (f *fakeRidesAPI) DeclineRide(ctx context.Context, rideID, reason string) error {
	return f.declineErr
}

func (f *fakeRidesAPI) UpdateRideStatus(ctx context.Context, rideID string, status model.RideStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statusCalls = append(f.statusCalls, status)
	return nil
}

func (f *fakeRidesAPI) DownloadVoucher(ctx context.Context, rideID string) ([]byte, error) {
	return f.voucherData, f.voucherErr
}

func (f *fakeRidesAPI) RideHistory(ctx context.Context, page, limit int) (dto.RideHistoryPage, error) {
	return f.history, f.historyErr
}

func (f *fakeRidesAPI) Stats(ctx context.Context, period string) (dto.DriverStats, error) {
	return f.stats, f.statsErr
}

type fakeVouchers struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func newFakeVouchers() *fakeVouchers {
	return &fakeVouchers{saved: make(map[string][]byte)}
}

func (f *fakeVouchers) SaveVoucher(rideID string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.saved[rideID] = data
	return "vouchers/bon_commande_" + rideID + ".pdf", nil
}

type fakeSubscription struct {
	ch   chan model.PositionSample
	once sync.Once
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{ch: make(chan model.PositionSample, 16)}
}

func (f *fakeSubscription) Updates() <-chan model.PositionSample {
	return f.ch
}

func (f *fakeSubscription) Stop() {
	f.once.Do(func() { close(f.ch) })
}

func (f *fakeSubscription) emit(sample model.PositionSample) {
	f.ch <- sample
}

type fakeProvider struct {
	mu sync.Mutex

	granted bool
	permErr error

	current    model.PositionSample
	currentErr error

	watchErr   error
	watchCalls int
	subs       []*fakeSubscription
}

func (f *fakeProvider) RequestPermission(ctx context.Context) (bool, error) {
	return f.granted, f.permErr
}

func (f *fakeProvider) CurrentPosition(ctx context.Context) (model.PositionSample, error) {
	return f.current, f.currentErr
}

func (f *fakeProvider) Watch(ctx context.Context, opts driven.WatchOptions) (driven.PositionSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	f.watchCalls++
	sub := newFakeSubscription()
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeProvider) lastSub() *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		return nil
	}
	return f.subs[len(f.subs)-1]
}
