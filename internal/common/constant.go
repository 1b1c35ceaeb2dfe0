// Package common contains constants and sentinel errors shared by the
// MeshMart CLI and the storage gateway. Callers should use errors.Is to
// match the error values.
package common

const (
	// AuthorizationHeader carries the bearer access token.
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "

	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)
