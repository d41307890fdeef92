// Package api exposes the HTTP surface of the service: user registration,
// lesson creation and polling, section listing, and section improvement
// jobs. Handlers decode and validate requests, call the corresponding
// application service, and map domain errors onto HTTP status codes,
// keeping transport concerns out of the service layer.
package api
