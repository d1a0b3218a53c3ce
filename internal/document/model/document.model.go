package model

import (
	"encoding/json"
	"time"
)

// Document is one persisted raw submission. The slug is the business
// identity: the store keeps at most one row per slug and upserts against
// it, so the store-assigned id only ever grows for genuinely new slugs.
type Document struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	SavingOrigin string          `json:"saving_origin"`
	CreatedAt    time.Time       `json:"created_at"`
	ModifiedAt   time.Time       `json:"modified_at"`
	Content      string          `json:"markdown_content"`
	PieceCount   int             `json:"piece_count"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// SaveRequest carries one document submission. Metadata is opaque: the
// store persists and returns it verbatim.
type SaveRequest struct {
	Username     string          `json:"username"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	SavingOrigin string          `json:"saving_origin"`
	Content      string          `json:"markdown_content"`
	PieceCount   int             `json:"piece_count"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

type SaveResponse struct {
	Document Document `json:"document"`
}

type ListResponse struct {
	Documents []Document `json:"documents"`
}
