// Package client is the gRPC client of the credential service used by
// notesctl.
//
// GRPCClient keeps the session token obtained by Login (or supplied up
// front) and attaches it as a bearer credential to every call. gRPC status
// codes are mapped to the sentinel errors in errors.go so callers can match
// them with errors.Is.
package client
