// Package models defines the dataloader's persisted data types.
package models

import "time"

// DataRecord is one ingested CSV row. ID is assigned by the store.
type DataRecord struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}
