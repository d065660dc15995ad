package services

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"xdrive-driver/internal/driver-client/core/domain/dto"
	"xdrive-driver/internal/driver-client/core/domain/model"
	"xdrive-driver/internal/driver-client/core/myerrors"
	"xdrive-driver/internal/driver-client/core/ports/driven"
	"xdrive-driver/internal/mylogger"

	jwt "github.com/golang-jwt/jwt"
)

const MinPasswordLen = 6

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SessionService owns the auth token, driver identity and session
// timestamps, and enforces the TTL + liveness expiry policy.
type SessionService struct {
	store driven.KeyValueStore
	api   driven.AuthAPI
	ttl   time.Duration
	now   func() time.Time
	mylog mylogger.Logger
}

func NewSessionService(store driven.KeyValueStore, api driven.AuthAPI, ttl time.Duration, mylog mylogger.Logger) *SessionService {
	return &SessionService{
		store: store,
		api:   api,
		ttl:   ttl,
		now:   time.Now,
		mylog: mylog,
	}
}

func validateLogin(email, password string) error {
	var problems []string

	if strings.TrimSpace(email) == "" {
		problems = append(problems, "email is required")
	} else if !emailRegexp.MatchString(email) {
		problems = append(problems, "email format is invalid")
	}

	if password == "" {
		problems = append(problems, "password is required")
	} else if len(password) < MinPasswordLen {
		problems = append(problems, "password must be at least 6 characters")
	}

	if len(problems) > 0 {
		return myerrors.New(myerrors.KindInvalidInput, strings.Join(problems, ", "))
	}
	return nil
}

// Login validates locally, authenticates against the server, checks the
// credential shape, and persists the session. The device push token, when
// one is stored, rides along with the credentials.
func (ss *SessionService) Login(ctx context.Context, email, password string) (model.Session, error) {
	if err := validateLogin(email, password); err != nil {
		return model.Session{}, err
	}

	pushToken, _, _ := ss.store.Get(keyPushToken)

	resp, err := ss.api.Login(ctx, dto.LoginRequest{
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Password:    password,
		DeviceToken: pushToken,
	})
	if err != nil {
		return model.Session{}, err
	}

	if resp.Token == "" {
		return model.Session{}, myerrors.New(myerrors.KindMalformedResponse, "no token received from server")
	}

	// Shape check only: three dot-separated segments that parse as a
	// compact credential. Signature verification stays server-side.
	parser := new(jwt.Parser)
	if _, _, err := parser.ParseUnverified(resp.Token, jwt.MapClaims{}); err != nil {
		return model.Session{}, myerrors.Wrap(myerrors.KindMalformedResponse, "malformed credential received from server", err)
	}

	session := model.Session{
		Token:    resp.Token,
		DriverID: resp.Driver.ID,
		LoginAt:  ss.now(),
	}

	driverRaw, err := json.Marshal(resp.Driver)
	if err != nil {
		return model.Session{}, myerrors.Wrap(myerrors.KindMalformedResponse, "encoding driver snapshot", err)
	}

	writes := [][2]string{
		{keyToken, session.Token},
		{keyDriverID, session.DriverID},
		{keyDriverData, string(driverRaw)},
		{keyLoginTime, session.LoginAt.Format(time.RFC3339)},
		{keyAvailable, "false"},
		{keyTracking, "false"},
	}
	for _, kv := range writes {
		if err := ss.store.Set(kv[0], kv[1]); err != nil {
			return model.Session{}, myerrors.Wrap(myerrors.KindInvalidInput, "persisting session", err)
		}
	}

	ss.mylog.Action("login").Info("session created", "driver_id", session.DriverID)
	return session, nil
}

// Session reads the persisted session, if any.
func (ss *SessionService) Session() (model.Session, bool) {
	token, okToken, _ := ss.store.Get(keyToken)
	driverID, okID, _ := ss.store.Get(keyDriverID)
	if !okToken || !okID || token == "" || driverID == "" {
		return model.Session{}, false
	}

	session := model.Session{Token: token, DriverID: driverID}
	if raw, ok, _ := ss.store.Get(keyLoginTime); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			session.LoginAt = t
		}
	}
	return session, true
}

// Token returns the current auth token, or "" when logged out. Handed to
// the API gateway as its token source.
func (ss *SessionService) Token() string {
	token, _, _ := ss.store.Get(keyToken)
	return token
}

// IsLoggedIn checks TTL locally first, then the token's liveness against
// the server. Any ambiguity degrades to "not logged in" with the session
// torn down; it never returns an error.
func (ss *SessionService) IsLoggedIn(ctx context.Context) bool {
	session, ok := ss.Session()
	if !ok {
		return false
	}

	if !session.LoginAt.IsZero() && session.Expired(ss.now(), ss.ttl) {
		ss.mylog.Action("session_expired").Info("session past TTL, logging out", "driver_id", session.DriverID)
		ss.Logout()
		return false
	}

	if _, err := ss.api.Profile(ctx); err != nil {
		ss.mylog.Action("session_check").Warn("liveness check failed, logging out", "error", err.Error())
		ss.Logout()
		return false
	}
	return true
}

// Logout clears every session key, including the cached push token and
// tracking flags. Idempotent.
func (ss *SessionService) Logout() {
	err := ss.store.Remove(
		keyToken,
		keyDriverID,
		keyDriverData,
		keyLoginTime,
		keyAvailable,
		keyTracking,
		keyPushToken,
	)
	if err != nil {
		ss.mylog.Error("clearing session keys", err)
	}
}

// CurrentDriver fetches the authoritative profile, refreshing the local
// snapshot. A rejected token triggers logout and a nil result.
func (ss *SessionService) CurrentDriver(ctx context.Context) (*model.Driver, error) {
	if _, ok := ss.Session(); !ok {
		return nil, nil
	}

	driver, err := ss.api.Profile(ctx)
	if err != nil {
		if myerrors.IsKind(err, myerrors.KindAuth) {
			ss.Logout()
			return nil, nil
		}
		return nil, err
	}

	if raw, err := json.Marshal(driver); err == nil {
		if err := ss.store.Set(keyDriverData, string(raw)); err != nil {
			ss.mylog.Error("caching driver snapshot", err)
		}
	}
	return &driver, nil
}

// UpdateProfile pushes profile changes and refreshes the cached snapshot.
func (ss *SessionService) UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (*model.Driver, error) {
	driver, err := ss.api.UpdateProfile(ctx, req)
	if err != nil {
		if myerrors.IsKind(err, myerrors.KindAuth) {
			ss.Logout()
		}
		return nil, err
	}

	if raw, err := json.Marshal(driver); err == nil {
		if err := ss.store.Set(keyDriverData, string(raw)); err != nil {
			ss.mylog.Error("caching driver snapshot", err)
		}
	}
	return &driver, nil
}
