// Package service contains the business logic.
//
// It sits between the handler and the provider clients. It receives
// validated data from the handler, reads the integration settings for
// the current request and makes exactly one provider call.
package service
