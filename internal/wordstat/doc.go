// Package wordstat is the HTTP client for the Yandex Wordstat search
// volume API.
//
// The client performs a single request per call and reports failures as
// typed errors classified from the HTTP status code. Retry and backoff
// policy belong to the caller, which knows whether a failure is worth
// retrying in the context of a whole discovery session.
package wordstat
