package dto

import "xdrive-driver/internal/driver-client/core/domain/model"

type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DeviceToken string `json:"deviceToken,omitempty"`
}

type LoginResponse struct {
	Token  string       `json:"token"`
	Driver model.Driver `json:"driver"`
}

type ProfileResponse struct {
	Driver model.Driver `json:"driver"`
}

type ProfileUpdateRequest struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Vehicle string `json:"vehicle,omitempty"`
}

type RegisterPushTokenRequest struct {
	PushToken string `json:"pushToken"`
}
