// Package handler is the first layer after the router.
//
// It decodes request bodies, validates them through the
// validation package, calls the service layer and writes
// each endpoint's JSON envelope.
package handler
