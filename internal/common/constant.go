package common

// AuthHeaderName is the HTTP header carrying the bearer access token on
// requests to the control plane.
const AuthHeaderName = "Authorization"

// AuthHeaderScheme prefixes the token value in AuthHeaderName.
const AuthHeaderScheme = "Bearer"
