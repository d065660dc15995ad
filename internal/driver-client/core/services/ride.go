package services

import (
	"context"
	"sync"

	"xdrive-driver/internal/driver-client/core/domain/model"
	"xdrive-driver/internal/driver-client/core/myerrors"
	"xdrive-driver/internal/driver-client/core/ports/driven"
	"xdrive-driver/internal/mylogger"
)

// RideFlow drives one ride from offer to completion. Every transition
// except cash collection is server-confirmed: a failed call leaves the
// machine in its prior state. One instance per actively-worked ride; the
// server stays the authority, Refresh re-derives local state from it.
type RideFlow struct {
	api      driven.RidesAPI
	vouchers driven.VoucherStore
	mylog    mylogger.Logger

	mu          sync.Mutex
	ride        model.Ride
	voucherPath string
}

func NewRideFlow(ride model.Ride, api driven.RidesAPI, vouchers driven.VoucherStore, mylog mylogger.Logger) *RideFlow {
	if ride.Status == "" {
		ride.Status = model.StatusPending
	}
	return &RideFlow{
		api:      api,
		vouchers: vouchers,
		mylog:    mylog,
		ride:     ride,
	}
}

func (rf *RideFlow) Ride() model.Ride {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.ride
}

func (rf *RideFlow) Status() model.RideStatus {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.ride.Status
}

// VoucherPath is where the order voucher was saved, or "" if none arrived.
func (rf *RideFlow) VoucherPath() string {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.voucherPath
}

// Accept moves pending → assigned. A voucher reference in the response
// triggers a best-effort download; its failure never rolls back the
// acceptance.
func (rf *RideFlow) Accept(ctx context.Context) error {
	rf.mu.Lock()
	if !rf.ride.Status.CanTransitionTo(model.StatusAssigned) {
		status := rf.ride.Status
		rf.mu.Unlock()
		return myerrors.Newf(myerrors.KindInvalidInput, "cannot accept a ride in status %s", status)
	}
	rf.mu.Unlock()

	resp, err := rf.api.AcceptRide(ctx, rf.ride.ID)
	if err != nil {
		return err
	}

	rf.mu.Lock()
	rf.ride.Status = model.StatusAssigned
	rf.mu.Unlock()
	rf.mylog.Action("ride_accepted").Info("ride assigned", "ride_id", rf.ride.ID)

	if resp.BonCommande != "" {
		rf.fetchVoucher(ctx)
	}
	return nil
}

func (rf *RideFlow) fetchVoucher(ctx context.Context) {
	data, err := rf.api.DownloadVoucher(ctx, rf.ride.ID)
	if err != nil {
		rf.mylog.Warn("voucher download failed", "ride_id", rf.ride.ID, "error", err.Error())
		return
	}

	path, err := rf.vouchers.SaveVoucher(rf.ride.ID, data)
	if err != nil {
		rf.mylog.Warn("voucher save failed", "ride_id", rf.ride.ID, "error", err.Error())
		return
	}

	rf.mu.Lock()
	rf.voucherPath = path
	rf.mu.Unlock()
	rf.mylog.Info("voucher saved", "ride_id", rf.ride.ID, "path", path)
}

// Decline moves pending → declined.
func (rf *RideFlow) Decline(ctx context.Context, reason string) error {
	rf.mu.Lock()
	if !rf.ride.Status.CanTransitionTo(model.StatusDeclined) {
		status := rf.ride.Status
		rf.mu.Unlock()
		return myerrors.Newf(myerrors.KindInvalidInput, "cannot decline a ride in status %s", status)
	}
	rf.mu.Unlock()

	if err := rf.api.DeclineRide(ctx, rf.ride.ID, reason); err != nil {
		return err
	}

	rf.mu.Lock()
	rf.ride.Status = model.StatusDeclined
	rf.mu.Unlock()
	return nil
}

// Advance moves the ride one step forward (assigned → en_route → arrived →
// in_progress → completed). Backward or skipping requests are rejected
// before any network call.
func (rf *RideFlow) Advance(ctx context.Context, target model.RideStatus) error {
	if !target.Valid() {
		return myerrors.Newf(myerrors.KindInvalidInput, "unknown ride status %q", target)
	}
	if target == model.StatusAssigned || target == model.StatusDeclined || target == model.StatusCashCollected {
		return myerrors.Newf(myerrors.KindInvalidInput, "status %s has a dedicated operation", target)
	}

	rf.mu.Lock()
	if !rf.ride.Status.CanTransitionTo(target) {
		status := rf.ride.Status
		rf.mu.Unlock()
		return myerrors.Newf(myerrors.KindInvalidInput, "cannot move from %s to %s", status, target)
	}
	rf.mu.Unlock()

	if err := rf.api.UpdateRideStatus(ctx, rf.ride.ID, target); err != nil {
		return err
	}

	rf.mu.Lock()
	rf.ride.Status = target
	rf.mu.Unlock()
	rf.mylog.Action("ride_status").Info("ride status updated", "ride_id", rf.ride.ID, "status", target.String())
	return nil
}

// CollectCash records the driver's attestation of having collected a cash
// payment. Client-authoritative: the one transition with no server call.
func (rf *RideFlow) CollectCash() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.ride.PaymentMethod != model.PaymentCash {
		return myerrors.Newf(myerrors.KindInvalidInput, "payment method %s is not collected in cash", rf.ride.PaymentMethod)
	}
	if !rf.ride.Status.CanTransitionTo(model.StatusCashCollected) {
		return myerrors.Newf(myerrors.KindInvalidInput, "cannot collect cash in status %s", rf.ride.Status)
	}

	rf.ride.Status = model.StatusCashCollected
	rf.mylog.Action("cash_collected").Info("cash collection confirmed", "ride_id", rf.ride.ID, "amount", rf.ride.Price)
	return nil
}

// Refresh refetches the ride and adopts the server's status; the local
// machine is only a cache of server truth.
func (rf *RideFlow) Refresh(ctx context.Context) error {
	ride, err := rf.api.RideDetails(ctx, rf.ride.ID)
	if err != nil {
		return err
	}

	rf.mu.Lock()
	defer rf.mu.Unlock()

	// Cash collection is client-local; never let a refresh regress it.
	if rf.ride.Status == model.StatusCashCollected && ride.Status == model.StatusCompleted {
		ride.Status = model.StatusCashCollected
	}
	if ride.Status == "" {
		ride.Status = rf.ride.Status
	}
	rf.ride = ride
	return nil
}
