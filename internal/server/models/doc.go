// Package models defines server-side data models persisted in the database
// and the value types that flow between services.
package models
