package webauthnhandler

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/myrjola/habitapp/internal/contexthelpers"
	"github.com/myrjola/habitapp/internal/errors"
)

var ErrUserNotFound = errors.NewSentinel("user not found")

func (h *WebAuthnHandler) upsertUser(ctx context.Context, u *user) error {
	stmt := `INSERT INTO users (webauthn_user_id, display_name)
VALUES (:webauthn_user_id, :display_name)
ON CONFLICT (webauthn_user_id) DO UPDATE SET display_name = excluded.display_name`
	if _, err := h.database.ReadWrite.ExecContext(ctx, stmt,
		sql.Named("webauthn_user_id", u.webAuthnID),
		sql.Named("display_name", u.displayName)); err != nil {
		return errors.Wrap(err, "db upsert user", slog.String("webauthn_user_id", hex.EncodeToString(u.webAuthnID)))
	}
	return nil
}

// getUserIntegerID maps the passkey user handle to users.id. Unknown handles return ErrUserNotFound.
func (h *WebAuthnHandler) getUserIntegerID(ctx context.Context, webAuthnID []byte) (int, error) {
	var id int
	err := h.database.ReadOnly.QueryRowContext(ctx,
		`SELECT id FROM users WHERE webauthn_user_id = ?`, webAuthnID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "query user id")
	}
	return id, nil
}

func (h *WebAuthnHandler) getUser(ctx context.Context, webAuthnID []byte) (_ *user, err error) {
	u := user{id: 0, webAuthnID: nil, displayName: "", credentials: nil}
	stmt := `SELECT id, webauthn_user_id, display_name FROM users WHERE webauthn_user_id = ?`
	err = h.database.ReadOnly.QueryRowContext(ctx, stmt, webAuthnID).Scan(&u.id, &u.webAuthnID, &u.displayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "read user")
	}

	stmt = `SELECT id,
       public_key,
       attestation_type,
       transport,
       flag_user_present,
       flag_user_verified,
       flag_backup_eligible,
       flag_backup_state,
       authenticator_aaguid,
       authenticator_sign_count,
       authenticator_clone_warning,
       authenticator_attachment
FROM credentials
WHERE user_id = ?`
	rows, err := h.database.ReadOnly.QueryContext(ctx, stmt, u.id)
	if err != nil {
		return nil, errors.Wrap(err, "query credentials")
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	for rows.Next() {
		var (
			credential webauthn.Credential
			transport  []byte
		)
		if err = rows.Scan(
			&credential.ID,
			&credential.PublicKey,
			&credential.AttestationType,
			&transport,
			&credential.Flags.UserPresent,
			&credential.Flags.UserVerified,
			&credential.Flags.BackupEligible,
			&credential.Flags.BackupState,
			&credential.Authenticator.AAGUID,
			&credential.Authenticator.SignCount,
			&credential.Authenticator.CloneWarning,
			&credential.Authenticator.Attachment,
		); err != nil {
			return nil, errors.Wrap(err, "scan credential")
		}
		if err = json.Unmarshal(transport, &credential.Transport); err != nil {
			return nil, errors.Wrap(err, "json decode transport")
		}
		u.credentials = append(u.credentials, credential)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate credentials")
	}

	return &u, nil
}

func (h *WebAuthnHandler) upsertCredential(ctx context.Context, webAuthnID []byte, credential *webauthn.Credential) error {
	stmt := `INSERT INTO credentials (id,
                         user_id,
                         public_key,
                         attestation_type,
                         transport,
                         flag_user_present,
                         flag_user_verified,
                         flag_backup_eligible,
                         flag_backup_state,
                         authenticator_aaguid,
                         authenticator_sign_count,
                         authenticator_clone_warning,
                         authenticator_attachment)
VALUES ($1, (SELECT id FROM users WHERE webauthn_user_id = $2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET attestation_type            = excluded.attestation_type,
                               transport                   = excluded.transport,
                               flag_user_present           = excluded.flag_user_present,
                               flag_user_verified          = excluded.flag_user_verified,
                               flag_backup_eligible        = excluded.flag_backup_eligible,
                               flag_backup_state           = excluded.flag_backup_state,
                               authenticator_aaguid        = excluded.authenticator_aaguid,
                               authenticator_sign_count    = excluded.authenticator_sign_count,
                               authenticator_clone_warning = excluded.authenticator_clone_warning,
                               authenticator_attachment    = excluded.authenticator_attachment`
	encodedTransport, err := json.Marshal(credential.Transport)
	if err != nil {
		return errors.Wrap(err, "json encode transport")
	}
	_, err = h.database.ReadWrite.ExecContext(
		ctx,
		stmt,
		credential.ID,
		webAuthnID,
		credential.PublicKey,
		credential.AttestationType,
		string(encodedTransport),
		credential.Flags.UserPresent,
		credential.Flags.UserVerified,
		credential.Flags.BackupEligible,
		credential.Flags.BackupState,
		credential.Authenticator.AAGUID,
		credential.Authenticator.SignCount,
		credential.Authenticator.CloneWarning,
		credential.Authenticator.Attachment,
	)
	if err != nil {
		return errors.Wrap(err, "db upsert credential",
			slog.String("webauthn_user_id", hex.EncodeToString(webAuthnID)),
			slog.String("credential_id", hex.EncodeToString(credential.ID)))
	}
	return nil
}

// DeleteUser removes the signed-in user. Credentials and every habit record are removed by cascading foreign keys.
func (h *WebAuthnHandler) DeleteUser(ctx context.Context) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	res, err := h.database.ReadWrite.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return errors.Wrap(err, "delete user", slog.Int("user_id", userID))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.Wrap(ErrUserNotFound, "delete user", slog.Int("user_id", userID))
	}
	h.logger.LogAttrs(ctx, slog.LevelInfo, "deleted user", slog.Int("user_id", userID))
	return nil
}
