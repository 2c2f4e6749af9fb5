package common

const (
	// AuthorizationHeaderName carries the bearer access token on inbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the access token in the Authorization header.
	BearerPrefix = "Bearer "

	// NewAccessTokenHeaderName carries a silently renewed access token on
	// outbound responses. Clients must adopt it for subsequent calls.
	NewAccessTokenHeaderName = "X-New-Access-Token"
)
