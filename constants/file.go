package constants

import (
	"strings"
	"time"
)

// FileFormat is the coarse source-format bucket used to pick a parser.
type FileFormat string

const (
	CSV         FileFormat = "CSV"
	SPREADSHEET FileFormat = "SPREADSHEET"
	PDF         FileFormat = "PDF"
	IMAGE       FileFormat = "IMAGE"
	UNKNOWN     FileFormat = "UNKNOWN"
)

const (
	// MaxBatchFiles is the upper bound the upload endpoint enforces per batch.
	MaxBatchFiles = 10

	// SessionTTL is the fixed lifetime of a staged ingestion session. Expiry is
	// enforced by the staging store itself; there is no separate sweeper.
	SessionTTL = time.Hour

	// SessionKeyPrefix namespaces staged sessions in the shared cache.
	SessionKeyPrefix = "expense_upload:"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapContentType buckets a declared MIME type (falling back to the file
// extension) into a FileFormat. Unsupported inputs map to UNKNOWN; the
// orchestrator turns those into per-file error records.
func MapContentType(mimeType, filename string) FileFormat {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case mt == "text/csv" || mt == "application/csv":
		return CSV
	case mt == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		mt == "application/vnd.ms-excel":
		return SPREADSHEET
	case mt == "application/pdf":
		return PDF
	case strings.HasPrefix(mt, "image/"):
		return IMAGE
	}

	// Some clients send application/octet-stream; fall back to the extension.
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return UNKNOWN
	}
	switch NormalizeExt(filename[idx:]) {
	case "csv":
		return CSV
	case "xlsx", "xls":
		return SPREADSHEET
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png", "webp", "gif":
		return IMAGE
	}
	return UNKNOWN
}
