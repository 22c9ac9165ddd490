package common

// AuthorizationHeaderName is the gRPC metadata key carrying credentials.
const AuthorizationHeaderName = "authorization"

// Authentication schemes accepted in the authorization header.
const (
	BearerScheme = "Bearer"
	BasicScheme  = "Basic"
)

// Token types embedded in signed tokens.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)
