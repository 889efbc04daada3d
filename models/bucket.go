package models

import (
	"encoding/json"
	"time"
)

// Bucket is a read-through view of a provider bucket
type Bucket struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MarshalJSON custom JSON marshaler for Bucket to format dates
func (b Bucket) MarshalJSON() ([]byte, error) {
	type Alias Bucket
	return json.Marshal(&struct {
		CreatedAt string `json:"created_at"`
		*Alias
	}{
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
		Alias:     (*Alias)(&b),
	})
}

// Object represents a stored object (file) within a bucket
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag,omitempty"`
	StorageClass string    `json:"storage_class,omitempty"`
}

// MarshalJSON custom JSON marshaler for Object to format dates
func (o Object) MarshalJSON() ([]byte, error) {
	type Alias Object
	return json.Marshal(&struct {
		LastModified string `json:"last_modified"`
		*Alias
	}{
		LastModified: o.LastModified.UTC().Format(time.RFC3339),
		Alias:        (*Alias)(&o),
	})
}
