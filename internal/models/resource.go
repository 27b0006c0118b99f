package models

import "time"

// Order describes the ORDER BY applied when a resource list is fetched.
type Order struct {
	Column    string
	Ascending bool
}

// ByCreatedDesc is the default ordering of every management list.
var ByCreatedDesc = Order{Column: "created_at"}

// Base carries the store-assigned identity shared by every record.
type Base struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RecordID returns the store-assigned identifier.
func (b Base) RecordID() string { return b.ID }
