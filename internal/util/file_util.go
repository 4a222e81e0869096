package util

import (
	"path"
	"strings"
)

func ExtFromFilenameOrMime(filename, mime string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext != "" {
		return ext
	}
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "application/pdf":
		return ".pdf"
	default:
		return ".png"
	}
}

// ClampText trims s and cuts it to max characters.
func ClampText(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if max >= 0 && len(r) > max {
		return string(r[:max])
	}
	return s
}
