package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "_" {
		return "file"
	}
	return name
}

// ObjectKey returns "<folder>/<yyyymmdd>-<uuid>-<safe name>".
func ObjectKey(folder, originalName string) string {
	folder = strings.Trim(folder, "/")
	return fmt.Sprintf("%s/%s-%s-%s",
		folder,
		time.Now().Format("20060102"),
		uuid.NewString(),
		SanitizeFilename(originalName),
	)
}

// ReplaceExt swaps the extension of a file name, "scan.jpeg" -> "scan.webp".
func ReplaceExt(name, ext string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ext
}
