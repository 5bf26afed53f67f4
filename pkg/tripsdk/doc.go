// Package tripsdk is the Go client for the trips service HTTP API. It shares
// its request/response types with the server handlers, so the wire contract
// lives in exactly one place.
package tripsdk
