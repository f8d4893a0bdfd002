package llm

import (
	"encoding/base64"
	"strings"
)

// EncodeDataURL packages raw image bytes as a data URL for vision requests.
func EncodeDataURL(data []byte, mimeType string) string {
	mt := strings.TrimSpace(mimeType)
	if mt == "" {
		mt = "application/octet-stream"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data)
}
