package services

import (
	"context"
	"testing"
	"time"

	"xdrive-driver/internal/driver-client/core/domain/dto"
	"xdrive-driver/internal/driver-client/core/domain/model"
	"xdrive-driver/internal/driver-client/core/myerrors"

	jwt "github.com/golang-jwt/jwt"
)

func signedTestToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return token
}

func TestLogin_InvalidInputBeforeNetwork(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "admin123"},
		{"bad email format", "not-an-email", "admin123"},
		{"empty password", "admin@xdrive.com", ""},
		{"short password", "admin@xdrive.com", "abc"},
		{"both missing", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAuthAPI{}
			ss := NewSessionService(newFakeStore(), api, 24*time.Hour, testLogger())

			_, err := ss.Login(context.Background(), tc.email, tc.password)
			if !myerrors.IsKind(err, myerrors.KindInvalidInput) {
				t.Fatalf("Login() kind=%v, want invalid_input (err=%v)", myerrors.KindOf(err), err)
			}
			if api.loginCalls != 0 {
				t.Fatalf("Login() reached the network %d times, want 0", api.loginCalls)
			}
		})
	}
}

func TestLogin_SuccessPersistsSession(t *testing.T) {
	t.Parallel()

	token := signedTestToken(t)
	store := newFakeStore()
	api := &fakeAuthAPI{
		loginResp: dto.LoginResponse{
			Token:  token,
			Driver: model.Driver{ID: "drv-7", Name: "Alice", Email: "admin@xdrive.com"},
		},
	}

	ss := NewSessionService(store, api, 24*time.Hour, testLogger())
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ss.now = func() time.Time { return now }

	session, err := ss.Login(context.Background(), "Admin@XDrive.com ", "admin123")
	if err != nil {
		t.Fatalf("Login() err=%v", err)
	}

	if session.DriverID != "drv-7" {
		t.Fatalf("session.DriverID=%q, want drv-7", session.DriverID)
	}
	if got := session.Age(now); got != 0 {
		t.Fatalf("session age at creation=%v, want 0", got)
	}
	if api.lastLogin.Email != "admin@xdrive.com" {
		t.Fatalf("login email=%q, want lowercased+trimmed", api.lastLogin.Email)
	}
	if store.get(keyToken) != token {
		t.Fatalf("stored token=%q, want the issued token", store.get(keyToken))
	}
	if store.get(keyAvailable) != "false" || store.get(keyTracking) != "false" {
		t.Fatalf("availability/tracking flags not reset: %q/%q", store.get(keyAvailable), store.get(keyTracking))
	}

	if !ss.IsLoggedIn(context.Background()) {
		t.Fatalf("IsLoggedIn()=false right after login")
	}
	if api.profileCalls != 1 {
		t.Fatalf("IsLoggedIn() made %d profile calls, want exactly 1", api.profileCalls)
	}
}

func TestLogin_MalformedCredential(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	api := &fakeAuthAPI{
		loginResp: dto.LoginResponse{Token: "only.twoparts", Driver: model.Driver{ID: "drv-7"}},
	}
	ss := NewSessionService(store, api, 24*time.Hour, testLogger())

	_, err := ss.Login(context.Background(), "admin@xdrive.com", "admin123")
	if !myerrors.IsKind(err, myerrors.KindMalformedResponse) {
		t.Fatalf("Login() kind=%v, want malformed_response", myerrors.KindOf(err))
	}
	if store.has(keyToken) {
		t.Fatalf("malformed credential was persisted")
	}
}

func TestLogin_NoToken(t *testing.T) {
	t.Parallel()

	api := &fakeAuthAPI{loginResp: dto.LoginResponse{Driver: model.Driver{ID: "drv-7"}}}
	ss := NewSessionService(newFakeStore(), api, 24*time.Hour, testLogger())

	_, err := ss.Login(context.Background(), "admin@xdrive.com", "admin123")
	if !myerrors.IsKind(err, myerrors.KindMalformedResponse) {
		t.Fatalf("Login() kind=%v, want malformed_response", myerrors.KindOf(err))
	}
}

func TestIsLoggedIn_NoSession(t *testing.T) {
	t.Parallel()

	api := &fakeAuthAPI{}
	ss := NewSessionService(newFakeStore(), api, 24*time.Hour, testLogger())

	if ss.IsLoggedIn(context.Background()) {
		t.Fatalf("IsLoggedIn()=true with no stored session")
	}
	if api.profileCalls != 0 {
		t.Fatalf("IsLoggedIn() hit the network with no session")
	}
}

func TestIsLoggedIn_TTLExpiryIsLocal(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	api := &fakeAuthAPI{}
	ss := NewSessionService(store, api, 24*time.Hour, testLogger())

	loginAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.Set(keyToken, "a.b.c")
	store.Set(keyDriverID, "drv-7")
	store.Set(keyLoginTime, loginAt.Format(time.RFC3339))

	ss.now = func() time.Time { return loginAt.Add(25 * time.Hour) }

	if ss.IsLoggedIn(context.Background()) {
		t.Fatalf("IsLoggedIn()=true past TTL")
	}
	if api.profileCalls != 0 {
		t.Fatalf("TTL expiry check reached the network")
	}
	if store.has(keyToken) {
		t.Fatalf("expired session was not torn down")
	}
}

func TestIsLoggedIn_LivenessFailureLogsOut(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	api := &fakeAuthAPI{profileErr: myerrors.New(myerrors.KindAuth, "token rejected")}
	ss := NewSessionService(store, api, 24*time.Hour, testLogger())

	store.Set(keyToken, "a.b.c")
	store.Set(keyDriverID, "drv-7")
	store.Set(keyLoginTime, time.Now().Format(time.RFC3339))

	if ss.IsLoggedIn(context.Background()) {
		t.Fatalf("IsLoggedIn()=true after liveness rejection")
	}
	if store.has(keyToken) || store.has(keyDriverID) {
		t.Fatalf("rejected session was not torn down")
	}
}

func TestLogout_Idempotent(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	ss := NewSessionService(store, &fakeAuthAPI{}, 24*time.Hour, testLogger())

	store.Set(keyToken, "a.b.c")
	store.Set(keyPushToken, "push-1")
	store.Set(keyTracking, "true")

	ss.Logout()
	ss.Logout()

	for _, key := range []string{keyToken, keyDriverID, keyDriverData, keyLoginTime, keyAvailable, keyTracking, keyPushToken} {
		if store.has(key) {
			t.Fatalf("key %q survived logout", key)
		}
	}
}

func TestCurrentDriver_RefreshesSnapshot(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	api := &fakeAuthAPI{profileDriver: model.Driver{ID: "drv-7", Name: "Alice"}}
	ss := NewSessionService(store, api, 24*time.Hour, testLogger())

	store.Set(keyToken, "a.b.c")
	store.Set(keyDriverID, "drv-7")

	driver, err := ss.CurrentDriver(context.Background())
	if err != nil {
		t.Fatalf("CurrentDriver() err=%v", err)
	}
	if driver == nil || driver.Name != "Alice" {
		t.Fatalf("CurrentDriver()=%+v, want Alice", driver)
	}
	if !store.has(keyDriverData) {
		t.Fatalf("driver snapshot was not cached")
	}
}

func TestCurrentDriver_AuthRejectionLogsOut(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	api := &fakeAuthAPI{profileErr: &myerrors.Error{Kind: myerrors.KindAuth, Message: "expired", Status: 401}}
	ss := NewSessionService(store, api, 24*time.Hour, testLogger())

	store.Set(keyToken, "a.b.c")
	store.Set(keyDriverID, "drv-7")

	driver, err := ss.CurrentDriver(context.Background())
	if err != nil {
		t.Fatalf("CurrentDriver() err=%v, want nil on auth rejection", err)
	}
	if driver != nil {
		t.Fatalf("CurrentDriver()=%+v, want nil", driver)
	}
	if store.has(keyToken) {
		t.Fatalf("session survived auth rejection")
	}
}

func TestCurrentDriver_NoSession(t *testing.T) {
	t.Parallel()

	api := &fakeAuthAPI{}
	ss := NewSessionService(newFakeStore(), api, 24*time.Hour, testLogger())

	driver, err := ss.CurrentDriver(context.Background())
	if err != nil || driver != nil {
		t.Fatalf("CurrentDriver()=%v,%v, want nil,nil", driver, err)
	}
	if api.profileCalls != 0 {
		t.Fatalf("CurrentDriver() hit the network with no session")
	}
}
