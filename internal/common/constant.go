package common

// AuthorizationHeaderName carries the bearer token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header value.
const BearerPrefix = "Bearer "

// DefaultRole is assigned to users registered without an explicit role.
const DefaultRole = "User"
