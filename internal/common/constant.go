// Package common contains shared constants and sentinel errors used across
// notesauth components.
package common

// AuthorizationHeaderName is the gRPC metadata key used to carry the
// session token on outbound requests.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the session token in the authorization header.
const BearerPrefix = "Bearer "

// IntegrationKeyHeaderName is the gRPC metadata key the identity-provider
// callback uses to present the shared integration key.
const IntegrationKeyHeaderName = "x-integration-key"
