// Package api defines the request and response messages of the splitledger.v1
// RPC services. Messages are plain structs encoded as JSON; money fields are
// decimal strings.
package api
