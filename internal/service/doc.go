// Package service contains the application-specific use cases of the
// companion. It orchestrates interactions between domain objects, the
// task store, and the remote scoring service to fulfill the operations
// exposed by the API layer.
//
// Services receive dependencies through constructor injection and return
// either sentinel errors from internal/store or service-specific error
// types; the API layer maps those to HTTP status codes.
package service
