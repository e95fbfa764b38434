// Package database manages the connection to the item store (MySQL via GORM).
//
// The item store holds the persisted catalog rows, the source items and the
// product-catalog link rows. The connection is optional for read-only
// commands; callers should degrade gracefully when Connect fails.
//
// The inspector utilities (GetTableColumns, HasTable) support schema
// verification without depending on GORM auto-migration.
package database
