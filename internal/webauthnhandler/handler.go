package webauthnhandler

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/sqlite"
)

type sessionKey string

const (
	webAuthnSessionKey sessionKey = "webauthn_session"
	userIDSessionKey   sessionKey = "webauthn_user_id"
)

//nolint:gochecknoglobals // gob registration must happen once per process.
var registerGob sync.Once

var errSessionData = errors.NewSentinel("no webauthn session data")

type WebAuthnHandler struct {
	logger         *slog.Logger
	webAuthn       *webauthn.WebAuthn
	sessionManager *scs.SessionManager
	database       *sqlite.Database
}

// New configures passkey authentication for fqdn. For localhost the relying party origin is the plain HTTP addr.
func New(
	addr string,
	fqdn string,
	logger *slog.Logger,
	sessionManager *scs.SessionManager,
	dbs *sqlite.Database,
) (*WebAuthnHandler, error) {
	timeout := 5 * time.Minute //nolint:mnd // time to finish a ceremony.
	// See https://github.com/alexedwards/scs?tab=readme-ov-file#working-with-session-data.
	registerGob.Do(func() {
		gob.Register(webauthn.SessionData{}) //nolint:exhaustruct // only need to register the struct.
	})

	rpOrigins := []string{"https://" + fqdn}
	if fqdn == "localhost" {
		//goland:noinspection HttpUrlsUsage // This is a local server.
		rpOrigins = []string{"http://" + addr}
	}

	webauthnConfig := &webauthn.Config{
		RPID:          fqdn,
		RPDisplayName: "Habits",
		RPOrigins:     rpOrigins,

		RPTopOrigins:                nil,
		RPTopOriginVerificationMode: protocol.TopOriginIgnoreVerificationMode,

		AttestationPreference: protocol.PreferNoAttestation,
		AuthenticatorSelection: protocol.AuthenticatorSelection{
			AuthenticatorAttachment: protocol.Platform,
			RequireResidentKey:      protocol.ResidentKeyRequired(),
			ResidentKey:             protocol.ResidentKeyRequirementRequired,
			UserVerification:        protocol.VerificationDiscouraged,
		},
		Debug:                false,
		EncodeUserIDAsString: false,
		Timeouts: webauthn.TimeoutsConfig{
			Login: webauthn.TimeoutConfig{
				Enforce:    true,
				Timeout:    timeout,
				TimeoutUVD: timeout,
			},
			Registration: webauthn.TimeoutConfig{
				Enforce:    true,
				Timeout:    timeout,
				TimeoutUVD: timeout,
			},
		},
		MDS: nil,
	}

	webAuthn, err := webauthn.New(webauthnConfig)
	if err != nil {
		return nil, errors.Wrap(err, "new webauthn", slog.String("rp_id", fqdn))
	}

	return &WebAuthnHandler{
		logger:         logger,
		webAuthn:       webAuthn,
		sessionManager: sessionManager,
		database:       dbs,
	}, nil
}

// BeginRegistration creates an anonymous user and returns the credential creation options as JSON.
func (h *WebAuthnHandler) BeginRegistration(ctx context.Context) ([]byte, error) {
	u, err := newRandomUser()
	if err != nil {
		return nil, errors.Wrap(err, "new user")
	}

	opts, session, err := h.webAuthn.BeginRegistration(u,
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired))
	if err != nil {
		return nil, errors.Wrap(err, "begin registration")
	}

	h.sessionManager.Put(ctx, string(webAuthnSessionKey), *session)
	if err = h.upsertUser(ctx, u); err != nil {
		return nil, errors.Wrap(err, "upsert user")
	}

	out, err := json.Marshal(opts)
	if err != nil {
		return nil, errors.Wrap(err, "json encode creation options")
	}
	return out, nil
}

func (h *WebAuthnHandler) parseWebAuthnSession(ctx context.Context) (webauthn.SessionData, error) {
	data := h.sessionManager.Get(ctx, string(webAuthnSessionKey))
	session, ok := data.(webauthn.SessionData)
	if !ok {
		return webauthn.SessionData{}, errors.Wrap(errSessionData, "parse session",
			slog.String("type", fmt.Sprintf("%T", data)))
	}
	return session, nil
}

// FinishRegistration stores the new credential and signs the user in.
func (h *WebAuthnHandler) FinishRegistration(r *http.Request) error {
	ctx := r.Context()
	session, err := h.parseWebAuthnSession(ctx)
	if err != nil {
		return errors.Wrap(err, "parse webauthn session")
	}

	u, err := h.getUser(ctx, session.UserID)
	if err != nil {
		return errors.Wrap(err, "get user")
	}

	credential, err := h.webAuthn.FinishRegistration(u, session, r)
	if err != nil {
		return errors.Wrap(err, "finish webauthn registration")
	}

	if err = h.upsertCredential(ctx, u.WebAuthnID(), credential); err != nil {
		return errors.Wrap(err, "upsert webauthn credential")
	}

	return h.signIn(ctx, u.WebAuthnID())
}

// BeginLogin starts a discoverable login and returns the assertion options as JSON.
func (h *WebAuthnHandler) BeginLogin(ctx context.Context) ([]byte, error) {
	options, session, err := h.webAuthn.BeginDiscoverableLogin()
	if err != nil {
		return nil, errors.Wrap(err, "begin discoverable webauthn login")
	}

	h.sessionManager.Put(ctx, string(webAuthnSessionKey), *session)

	out, err := json.Marshal(options)
	if err != nil {
		return nil, errors.Wrap(err, "json encode assertion options")
	}
	return out, nil
}

func (h *WebAuthnHandler) findUserHandler(ctx context.Context) webauthn.DiscoverableUserHandler {
	return func(_, userHandle []byte) (webauthn.User, error) {
		return h.getUser(ctx, userHandle)
	}
}

// FinishLogin validates the passkey assertion and signs the user in.
func (h *WebAuthnHandler) FinishLogin(r *http.Request) error {
	ctx := r.Context()
	session, err := h.parseWebAuthnSession(ctx)
	if err != nil {
		return errors.Wrap(err, "parse webauthn session")
	}

	parsedResponse, err := protocol.ParseCredentialRequestResponse(r)
	if err != nil {
		return errors.Wrap(err, "parse credential request response")
	}
	u, credential, err := h.webAuthn.ValidatePasskeyLogin(h.findUserHandler(ctx), session, parsedResponse)
	if err != nil {
		return errors.Wrap(err, "validate passkey login")
	}

	// The sign count and flags change on every login.
	if err = h.upsertCredential(ctx, u.WebAuthnID(), credential); err != nil {
		return errors.Wrap(err, "upsert webauthn credential")
	}

	return h.signIn(ctx, u.WebAuthnID())
}

func (h *WebAuthnHandler) signIn(ctx context.Context, webAuthnID []byte) error {
	if err := h.sessionManager.RenewToken(ctx); err != nil {
		return errors.Wrap(err, "renew session token")
	}
	h.sessionManager.Remove(ctx, string(webAuthnSessionKey))
	h.sessionManager.Put(ctx, string(userIDSessionKey), webAuthnID)
	return nil
}

func (h *WebAuthnHandler) Logout(ctx context.Context) error {
	if err := h.sessionManager.RenewToken(ctx); err != nil {
		return errors.Wrap(err, "renew session token")
	}
	h.sessionManager.Remove(ctx, string(userIDSessionKey))
	return nil
}
