// Package ratelimit implements the admission-control gate for outbound
// suggestion API calls. It enforces three nested quotas: requests per
// second, per hour, and per day.
package ratelimit
