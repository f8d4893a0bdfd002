// Package extract drives single-document extraction: PDFs give up their text
// layer locally, images go to the vision endpoint directly, and either way the
// model response is parsed defensively into exactly one record.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/solobooks/solobooks/constants"
	"github.com/solobooks/solobooks/internal/entity"
	"github.com/solobooks/solobooks/internal/llm"
	"github.com/solobooks/solobooks/internal/normalize"
)

// ErrNoTextLayer marks a PDF without extractable text. No rasterization
// fallback is attempted; the orchestrator records it as a per-file failure.
var ErrNoTextLayer = errors.New("pdf has no extractable text layer")

type Service struct {
	extractor llm.Extractor
	logger    *slog.Logger
}

func NewService(extractor llm.Extractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{extractor: extractor, logger: logger}
}

// FromPDF extracts the text layer and sends it through the text endpoint.
// It returns an error only for hard per-file failures (no text layer,
// extraction-service transport/auth failure); malformed model output degrades
// to a low-confidence record instead.
func (s *Service) FromPDF(ctx context.Context, data []byte) (entity.ExtractedRecord, error) {
	text, err := pdfText(data)
	if err != nil {
		return entity.ExtractedRecord{}, err
	}

	start := time.Now()
	raw, err := s.extractor.ExtractFromText(ctx, text)
	if err != nil {
		return entity.ExtractedRecord{}, fmt.Errorf("extraction service: %w", err)
	}
	s.logger.Debug("extract.pdf.done", "text_len", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return s.recordFromResponse(raw), nil
}

// FromImage sends the raw image bytes through the vision endpoint.
func (s *Service) FromImage(ctx context.Context, data []byte, mimeType string) (entity.ExtractedRecord, error) {
	start := time.Now()
	raw, err := s.extractor.ExtractFromImage(ctx, data, mimeType)
	if err != nil {
		return entity.ExtractedRecord{}, fmt.Errorf("extraction service: %w", err)
	}
	s.logger.Debug("extract.image.done", "bytes", len(data), "elapsed_ms", time.Since(start).Milliseconds())
	return s.recordFromResponse(raw), nil
}

// recordFromResponse converts a raw model response into exactly one record.
// Parse failures are swallowed into a low-confidence empty record with the raw
// text preserved; they must never propagate past this layer.
func (s *Service) recordFromResponse(raw []byte) entity.ExtractedRecord {
	fields, err := llm.ParseExtraction(raw)
	if err != nil {
		s.logger.Warn("extract.response_unparsable", "raw_bytes", len(raw))
		return entity.ExtractedRecord{
			CurrencyCode: "USD",
			Confidence:   constants.ConfidenceLow,
			RawResponse:  truncate(string(raw), 2000),
		}
	}

	rec := entity.ExtractedRecord{
		Description:   fields.Description,
		InvoiceNumber: fields.InvoiceNumber,
		LineItems:     fields.LineItems,
		CurrencyCode:  normalize.Currency(fields.Currency),
		Confidence:    constants.ConfidenceMedium,
	}
	if v := strings.TrimSpace(fields.VendorName); v != "" {
		rec.VendorName = &v
	}
	if amt, ok := normalize.Amount(fields.Amount); ok {
		rec.Amount = &amt
	}
	if d, ok := normalize.Date(fields.TransactionDate); ok {
		rec.TransactionDate = &d
	}
	switch fields.Confidence {
	case "high":
		rec.Confidence = constants.ConfidenceHigh
	case "medium":
		rec.Confidence = constants.ConfidenceMedium
	case "low":
		rec.Confidence = constants.ConfidenceLow
	}

	// Local schema check is advisory: a response that parsed but does not
	// match the contract is suspect, not fatal.
	if err := llm.ValidateJSONAgainstSchema(llm.BuildExpenseJSONSchema(), []byte(llm.StripCodeFences(string(raw)))); err != nil {
		if rec.Confidence == constants.ConfidenceHigh {
			rec.Confidence = constants.ConfidenceMedium
		}
		s.logger.Debug("extract.schema_mismatch", "error", err)
	}
	return rec
}

// pdfText pulls the embedded text layer out of a PDF buffer. It fails hard
// when no text layer exists; scanned-image PDFs are out of scope here.
func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoTextLayer, err)
	}
	var b strings.Builder
	if _, err := io.Copy(&b, reader); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrNoTextLayer
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
