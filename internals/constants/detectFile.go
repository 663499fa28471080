package constants

import (
	"path/filepath"
	"strings"
)

const (
	FileKindUnknown = iota
	FileKindPDF
	FileKindImage
)

const MaxUploadBytes = 5 << 20

func DetectFileKindFromExt(filename string) int {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FileKindPDF
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileKindImage
	default:
		return FileKindUnknown
	}
}

// MimeFromExt is used when the client sends no usable Content-Type.
func MimeFromExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
