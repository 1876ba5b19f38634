package api

import (
	"github.com/starford/mediastore/internal/journal"
	"github.com/starford/mediastore/internal/media"
)

// ListingPage is the response of GET /list/*.
type ListingPage = media.ListingPage

// MutationResult is the response of DELETE /*.
type MutationResult = media.MutationResult

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	Success bool `json:"success" example:"true" validate:"required"`
}

// MessageResponse carries the reason an upload failed.
type MessageResponse struct {
	Message string `json:"message" example:"multipart: NextPart: EOF" validate:"required"`
}

// JournalResponse wraps recent journal entries.
type JournalResponse struct {
	Entries []journal.Entry `json:"entries" validate:"required"`
}
