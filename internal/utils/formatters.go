package utils

import (
	"mime"

	"github.com/google/uuid"
)

// GenerateUUID генерирует новый UUID.
func GenerateUUID() string {
	return uuid.New().String()
}

// ContentDisposition returns an attachment header value for filename.
func ContentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
