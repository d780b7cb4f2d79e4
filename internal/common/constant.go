// Package common contains shared constants and sentinel errors used across
// CarModPicker components.
package common

// AccessTokenCookieName is the cookie that carries the session token.
const AccessTokenCookieName = "access_token"

// AuthorizationHeaderName carries a bearer token for non-browser clients.
const AuthorizationHeaderName = "Authorization"
