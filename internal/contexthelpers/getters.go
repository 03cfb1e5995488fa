package contexthelpers

import (
	"context"
	"time"

	"github.com/myrjola/habitapp/internal/i18n"
)

func IsAuthenticated(ctx context.Context) bool {
	isAuthenticated, ok := ctx.Value(IsAuthenticatedContextKey).(bool)
	if !ok {
		return false
	}

	return isAuthenticated
}

// AuthenticatedUserID returns the users.id of the signed-in user or 0.
func AuthenticatedUserID(ctx context.Context) int {
	userID, ok := ctx.Value(AuthenticatedUserIDContextKey).(int)
	if !ok {
		return 0
	}

	return userID
}

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(CurrentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}

func CSPNonce(ctx context.Context) string {
	cspNonce, ok := ctx.Value(CspNonceContextKey).(string)
	if !ok {
		return ""
	}

	return cspNonce
}

func Language(ctx context.Context) i18n.Language {
	lang, ok := ctx.Value(LanguageContextKey).(i18n.Language)
	if !ok {
		return i18n.DefaultLanguage
	}
	return lang
}

// Location returns the caller's time zone, falling back to UTC.
func Location(ctx context.Context) *time.Location {
	loc, ok := ctx.Value(LocationContextKey).(*time.Location)
	if !ok || loc == nil {
		return time.UTC
	}
	return loc
}

// Today is the caller's local calendar day at midnight UTC.
//
// Habit data is keyed by civil dates so the wall clock is read in the caller's zone and the time of day dropped.
func Today(ctx context.Context) time.Time {
	y, m, d := time.Now().In(Location(ctx)).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
