package lesson

import "github.com/coursebox/backend/core/store"

// attachment types
const (
	AttachmentPresentation = "presentation"
	AttachmentPDF          = "pdf"
	AttachmentOther        = "other"
)

type (
	Attachment struct {
		Title   string `json:"title" validate:"notblank"`
		FileURL string `json:"file_url" validate:"required,url"`
		Type    string `json:"type" validate:"oneof=presentation pdf other"`
	}

	Lesson struct {
		store.Record
		Title       string       `json:"title" validate:"notblank"`
		Description string       `json:"description"`
		Topic       string       `json:"topic"`
		VideoURL    string       `json:"video_url" validate:"omitempty,url"`
		Attachments []Attachment `json:"attachments" validate:"dive"`
		Order       int          `json:"order" validate:"gte=0"` // display position within the topic
		IsSample    bool         `json:"is_sample"`
	}
)
