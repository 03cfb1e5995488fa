package contexthelpers

type contextKey string

const (
	IsAuthenticatedContextKey     = contextKey("isAuthenticated")
	AuthenticatedUserIDContextKey = contextKey("authenticatedUserID")
	CurrentPathContextKey         = contextKey("currentPath")
	CspNonceContextKey            = contextKey("cspNonce")
	LanguageContextKey            = contextKey("language")
	LocationContextKey            = contextKey("location")
)
