package webauthnhandler

import (
	"crypto/rand"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/myrjola/habitapp/internal/errors"
)

// webAuthnIDLength is the maximum user handle length allowed by WebAuthn.
const webAuthnIDLength = 64

// user implements webauthn.User. The user handle is random so the passkey reveals nothing about the person.
type user struct {
	id          int
	webAuthnID  []byte
	displayName string
	credentials []webauthn.Credential
}

func newRandomUser() (*user, error) {
	webAuthnID := make([]byte, webAuthnIDLength)
	if _, err := rand.Read(webAuthnID); err != nil {
		return nil, errors.Wrap(err, "generate user handle")
	}
	return &user{
		id:          0,
		webAuthnID:  webAuthnID,
		displayName: "Anonymous user",
		credentials: nil,
	}, nil
}

func (u *user) WebAuthnID() []byte {
	return u.webAuthnID
}

func (u *user) WebAuthnName() string {
	return u.displayName
}

func (u *user) WebAuthnDisplayName() string {
	return u.displayName
}

func (u *user) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}
