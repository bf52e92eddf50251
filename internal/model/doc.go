// Package model defines the core data types shared across wordharvest:
// discovery tasks, keyword records, and suggestion API responses.
package model
