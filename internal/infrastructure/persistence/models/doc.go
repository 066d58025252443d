// Package models holds the GORM table mappings for the P&L store. Domain
// aggregates stay free of ORM tags; each model here carries the column
// definitions and converts to and from its domain counterpart, and the
// repositories only ever touch the database through these types.
package models
