package models

import "time"

type HistoryEntry struct {
	ID        string    `db:"id" json:"id"`
	SourceURL string    `db:"source_url" json:"sourceUrl"`
	Platform  Platform  `db:"platform" json:"platform"`
	Strategy  string    `db:"strategy" json:"strategy,omitempty"`
	Success   bool      `db:"success" json:"success"`
	VideoURL  string    `db:"video_url" json:"videoUrl,omitempty"` // empty on failure
	Error     string    `db:"error" json:"error,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
