package services

import (
	"context"

	"xdrive-driver/internal/driver-client/core/ports/driven"
	"xdrive-driver/internal/mylogger"
)

// NotificationService owns the device push token: local storage plus
// server registration. Only the data contract is handled here; the push
// transport belongs to the platform.
type NotificationService struct {
	store driven.KeyValueStore
	api   driven.AuthAPI
	mylog mylogger.Logger
}

func NewNotificationService(store driven.KeyValueStore, api driven.AuthAPI, mylog mylogger.Logger) *NotificationService {
	return &NotificationService{
		store: store,
		api:   api,
		mylog: mylog,
	}
}

func (ns *NotificationService) SavedToken() (string, bool) {
	token, ok, _ := ns.store.Get(keyPushToken)
	return token, ok && token != ""
}

// Register stores the device token and announces it to the server.
// Registration failure is logged; the token stays saved for the next login
// to carry along.
func (ns *NotificationService) Register(ctx context.Context, token string) error {
	if err := ns.store.Set(keyPushToken, token); err != nil {
		return err
	}

	if err := ns.api.RegisterPushToken(ctx, token); err != nil {
		ns.mylog.Warn("push token registration failed", "error", err.Error())
		return err
	}

	ns.mylog.Action("push_token_registered").Info("push token registered")
	return nil
}
