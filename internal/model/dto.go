package model

import "time"

// DocumentInfo is the read model returned to owners and shared-link consumers.
// ThumbnailURL is a short-lived presigned grant derived per call, never persisted.
type DocumentInfo struct {
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Path         string    `json:"path"`
	Downloads    int       `json:"downloads"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FileResponse carries downloadable content with its display name and content type.
// Content is fully buffered; download endpoints are bounded to memory by design.
type FileResponse struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}
