package model

import "time"

// Document represents one stored file owned by a user.
// This is a pure domain model with no database-specific dependencies or tags.
// StorageKey is the object-store address in the form "{ownerID}/{fileName}" and is
// unique across the system; re-uploading the same owner+name pair updates the
// existing record instead of creating a second one.
type Document struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	StorageKey   string    `json:"storage_key"`
	ThumbnailKey string    `json:"thumbnail_key,omitempty"`
	Downloads    int       `json:"downloads"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
