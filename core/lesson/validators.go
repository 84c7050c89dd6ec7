package lesson

import (
	"strings"

	"github.com/coursebox/backend/core"
)

var validate, translator = core.NewValidator()

func normalize(l *Lesson) {
	l.Title = core.CleanString(l.Title)
	l.Topic = core.CleanString(l.Topic)
	l.VideoURL = core.CleanString(l.VideoURL)
	if l.Attachments == nil {
		l.Attachments = []Attachment{}
	}
	for i := range l.Attachments {
		att := &l.Attachments[i]
		att.Title = core.CleanString(att.Title)
		att.FileURL = core.CleanString(att.FileURL)
		att.Type = strings.ToLower(core.CleanString(att.Type))
		if att.Type == "" {
			att.Type = AttachmentOther
		}
	}
}

func validateLesson(l *Lesson) error {
	return core.ValidateStruct(validate, translator, l)
}
