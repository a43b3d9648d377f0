package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iwslabs/featreq/internal/api"
	"github.com/iwslabs/featreq/internal/convert"
	"github.com/iwslabs/featreq/internal/event"
	"github.com/iwslabs/featreq/internal/model"
)

type authState int

const (
	authUnknown authState = iota
	authLoggedIn
	authLoggedOut
)

// Auth owns the shared session status record and drives the session
// lifecycle events. The record persists for the application lifetime and is
// overwritten in place on every auth response.
type Auth struct {
	tr     AuthTransport
	bus    *event.Bus
	log    *zap.Logger
	status *model.AuthStatus
	state  authState
}

// NewAuth constructs the auth store.
func NewAuth(tr AuthTransport, bus *event.Bus, log *zap.Logger) *Auth {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auth{tr: tr, bus: bus, log: log, status: &model.AuthStatus{}}
}

// Status returns the shared session record consumers bind to. Only this
// store's operations write to it.
func (a *Auth) Status() *model.AuthStatus { return a.status }

// Refresh fetches the current session status and applies it.
func (a *Auth) Refresh(ctx context.Context) (*model.AuthStatus, error) {
	rec, err := a.tr.AuthStatus(ctx)
	if err != nil {
		return nil, a.fail(err)
	}
	return a.apply(rec), nil
}

// Login posts credentials. On success the CSRF token for subsequent
// mutating requests is taken from the response.
func (a *Auth) Login(ctx context.Context, username, password string) (*model.AuthStatus, error) {
	rec, err := a.tr.Login(ctx, username, password)
	if err != nil {
		return nil, a.fail(err)
	}
	return a.apply(rec), nil
}

// Logout posts the logout action. A successful response always reports
// logged_in=false; a transport failure leaves the record untouched apart
// from ErrMsg.
func (a *Auth) Logout(ctx context.Context) (*model.AuthStatus, error) {
	rec, err := a.tr.Logout(ctx)
	if err != nil {
		return nil, a.fail(err)
	}
	return a.apply(rec), nil
}

// HandleExpiry forces the logged-out transition after the transport sees a
// 403 session-expired response anywhere in the app. Idempotent: only the
// transition out of the logged-in state broadcasts SessionEnded.
func (a *Auth) HandleExpiry() {
	prev := a.state
	a.state = authLoggedOut
	a.status.LoggedIn = false
	if prev == authLoggedIn {
		a.status.ErrMsg = "session expired"
		a.log.Info("session expired, forcing logout",
			zap.String("username", a.status.Username))
		a.bus.Publish(event.SessionEnded, a.status)
	}
}

// apply overwrites the shared record from an auth response and emits the
// lifecycle transition, never redundantly.
func (a *Auth) apply(rec api.AuthRecord) *model.AuthStatus {
	st := convert.AuthFromWire(rec)
	a.status.LoggedIn = st.LoggedIn
	a.status.Username = st.Username
	a.status.FullName = st.FullName
	a.status.CSRFToken = st.CSRFToken
	a.status.SessionExpiry = st.SessionExpiry
	a.status.ErrMsg = ""
	a.tr.SetCSRFToken(st.CSRFToken)

	prev := a.state
	if st.LoggedIn {
		a.state = authLoggedIn
		if prev != authLoggedIn {
			a.log.Info("session established", zap.String("username", st.Username))
			a.bus.Publish(event.SessionEstablished, a.status)
		}
	} else {
		a.state = authLoggedOut
		if prev == authLoggedIn {
			a.log.Info("session ended")
			a.bus.Publish(event.SessionEnded, a.status)
		}
	}
	return a.status
}

// fail records the failure message without disturbing the session state.
func (a *Auth) fail(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		a.status.ErrMsg = apiErr.Message
	} else {
		a.status.ErrMsg = err.Error()
	}
	return err
}
