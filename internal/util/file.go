package util

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

var AllowedVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm"}

// ValidateMimeType sniffs the leading bytes of a file and checks the
// detected MIME type against a list of allowed prefixes or exact types.
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

func IsVideo(mimeType string) bool {
	// webm recordings from browsers often sniff as generic octet-stream
	return strings.HasPrefix(mimeType, "video/") || mimeType == "application/octet-stream"
}
