// Package ingestion drives the upload → extract → stage → confirm pipeline.
// A batch of heterogeneous files becomes one staged session; the session
// becomes permanent expenses only after the user confirms it.
package ingestion

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/solobooks/solobooks/constants"
	"github.com/solobooks/solobooks/internal/classify"
	"github.com/solobooks/solobooks/internal/common"
	"github.com/solobooks/solobooks/internal/entity"
	"github.com/solobooks/solobooks/internal/repository"
	"github.com/solobooks/solobooks/internal/staging"
	"github.com/solobooks/solobooks/internal/storage"
)

// UploadedFile is one member of an upload batch, already read into memory by
// the transport layer.
type UploadedFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// Options are the caller-supplied defaults applied to every extracted record.
// They may arrive as a JSON string on the wire; parse failures there are the
// transport's problem and degrade to the zero value.
type Options struct {
	DefaultCategoryID      *uuid.UUID `json:"default_category_id,omitempty"`
	DefaultPaymentMethodID *uuid.UUID `json:"default_payment_method_id,omitempty"`
}

// IngestResult is the synchronous response to an upload: the session handle
// plus a buffer-free view of the extracted records. Raw file bytes never leave
// the staging store.
type IngestResult struct {
	SessionID         string                   `json:"session_id"`
	ExtractedExpenses []entity.ExtractedRecord `json:"extracted_expenses"`
}

// tabularParser and documentExtractor are the two extraction backends the
// orchestrator dispatches to.
type tabularParser interface {
	ParseCSV(data []byte) []entity.ExtractedRecord
	ParseSpreadsheet(data []byte) ([]entity.ExtractedRecord, error)
}

type documentExtractor interface {
	FromPDF(ctx context.Context, data []byte) (entity.ExtractedRecord, error)
	FromImage(ctx context.Context, data []byte, mimeType string) (entity.ExtractedRecord, error)
}

// Service is the ingestion orchestrator and confirmation committer.
type Service struct {
	parser      tabularParser
	documents   documentExtractor
	store       staging.Store
	expenses    repository.ExpenseRepository
	attachments repository.AttachmentRepository
	categories  repository.CategoryRepository
	blobs       storage.BlobStore
	logger      *slog.Logger
}

func NewService(
	parser tabularParser,
	documents documentExtractor,
	store staging.Store,
	expenses repository.ExpenseRepository,
	attachments repository.AttachmentRepository,
	categories repository.CategoryRepository,
	blobs storage.BlobStore,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		parser:      parser,
		documents:   documents,
		store:       store,
		expenses:    expenses,
		attachments: attachments,
		categories:  categories,
		blobs:       blobs,
		logger:      logger,
	}
}

// Ingest processes a batch of files sequentially, stages the outcome under a
// fresh session handle, and returns the handle plus the extracted records.
// One bad file never fails the batch; the batch only fails up front, before
// any side effects.
func (s *Service) Ingest(ctx context.Context, files []UploadedFile, ownerID uuid.UUID, opts Options) (*IngestResult, error) {
	if len(files) == 0 {
		return nil, common.InvalidArgumentError("no files provided")
	}
	if len(files) > constants.MaxBatchFiles {
		return nil, common.InvalidArgumentErrorf("too many files: %d (max %d)", len(files), constants.MaxBatchFiles)
	}

	start := time.Now()
	s.logger.Info("ingest.batch.start", "user_id", ownerID, "files", len(files))

	// Candidate categories are fetched once per batch. Classification is
	// advisory, so a lookup failure degrades to no auto-assignment.
	var cats []entity.Category
	if s.categories != nil {
		var err error
		cats, err = s.categories.ListCategories(ctx, ownerID, "expense")
		if err != nil {
			s.logger.Warn("ingest.categories.unavailable", "user_id", ownerID, "error", err)
			cats = nil
		}
	}

	session := entity.IngestionSession{
		UserID:    ownerID,
		CreatedAt: time.Now().UTC(),
	}

	for _, f := range files {
		records := s.processFile(ctx, f)
		for i := range records {
			s.annotate(&records[i], f, cats, opts)
		}
		session.ExtractedExpenses = append(session.ExtractedExpenses, records...)
		session.Files = append(session.Files, entity.StagedFile{
			OriginalName: f.Name,
			MimeType:     f.MimeType,
			Size:         int64(len(f.Data)),
			Base64Data:   base64.StdEncoding.EncodeToString(f.Data),
		})
	}

	// The session is written once, whole, after the entire batch processed;
	// a partially built session is never visible to a Get.
	sessionID := uuid.New().String()
	key := constants.SessionKeyPrefix + sessionID
	if err := s.store.Set(ctx, key, session, constants.SessionTTL); err != nil {
		s.logger.Error("ingest.session.store_failed", "user_id", ownerID, "error", err)
		return nil, common.InternalError("failed to stage extraction results")
	}

	s.logger.Info("ingest.batch.done",
		"user_id", ownerID,
		"session_id", sessionID,
		"records", len(session.ExtractedExpenses),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &IngestResult{
		SessionID:         sessionID,
		ExtractedExpenses: session.ExtractedExpenses,
	}, nil
}

// processFile dispatches one file to the matching backend. Failures come back
// as a single error record; tabular files may yield zero or many records.
func (s *Service) processFile(ctx context.Context, f UploadedFile) []entity.ExtractedRecord {
	switch constants.MapContentType(f.MimeType, f.Name) {
	case constants.CSV:
		return s.parser.ParseCSV(f.Data)
	case constants.SPREADSHEET:
		recs, err := s.parser.ParseSpreadsheet(f.Data)
		if err != nil {
			s.logger.Warn("ingest.file.failed", "file", f.Name, "error", err)
			return []entity.ExtractedRecord{errorRecord(err)}
		}
		return recs
	case constants.PDF:
		rec, err := s.documents.FromPDF(ctx, f.Data)
		if err != nil {
			s.logger.Warn("ingest.file.failed", "file", f.Name, "error", err)
			return []entity.ExtractedRecord{errorRecord(err)}
		}
		return []entity.ExtractedRecord{rec}
	case constants.IMAGE:
		rec, err := s.documents.FromImage(ctx, f.Data, f.MimeType)
		if err != nil {
			s.logger.Warn("ingest.file.failed", "file", f.Name, "error", err)
			return []entity.ExtractedRecord{errorRecord(err)}
		}
		return []entity.ExtractedRecord{rec}
	default:
		s.logger.Warn("ingest.file.unsupported", "file", f.Name, "mime_type", f.MimeType)
		return []entity.ExtractedRecord{errorRecord(fmt.Errorf("unsupported file type: %s", f.MimeType))}
	}
}

func errorRecord(err error) entity.ExtractedRecord {
	return entity.ExtractedRecord{
		CurrencyCode: "USD",
		Confidence:   constants.ConfidenceLow,
		Error:        err.Error(),
	}
}

// annotate stamps provenance, a fresh temp id, and the category/payment
// defaults onto one extracted record.
func (s *Service) annotate(rec *entity.ExtractedRecord, f UploadedFile, cats []entity.Category, opts Options) {
	rec.TempID = uuid.New().String()
	rec.FileName = f.Name
	rec.FileSize = int64(len(f.Data))
	rec.FileMimeType = f.MimeType

	if rec.CategoryID == nil && rec.Error == "" {
		vendor := ""
		if rec.VendorName != nil {
			vendor = *rec.VendorName
		}
		rec.CategoryID = classify.Match(vendor, rec.Description, cats)
	}
	if rec.CategoryID == nil {
		rec.CategoryID = opts.DefaultCategoryID
	}
	if rec.PaymentMethodID == nil {
		rec.PaymentMethodID = opts.DefaultPaymentMethodID
	}
}

// SessionData returns the staged session for its owner. A session held by a
// different user is reported as not found; expiry, absence, and foreign
// ownership are deliberately indistinguishable to the caller.
func (s *Service) SessionData(ctx context.Context, sessionID string, ownerID uuid.UUID) (*entity.IngestionSession, error) {
	if sessionID == "" {
		return nil, common.InvalidArgumentError("session id is required")
	}
	var session entity.IngestionSession
	err := s.store.Get(ctx, constants.SessionKeyPrefix+sessionID, &session)
	if errors.Is(err, staging.ErrNotFound) {
		return nil, common.NotFoundError("session not found or expired")
	}
	if err != nil {
		s.logger.Error("ingest.session.read_failed", "session_id", sessionID, "error", err)
		return nil, common.InternalError("failed to read session")
	}
	if session.UserID != ownerID {
		s.logger.Warn("ingest.session.owner_mismatch", "session_id", sessionID, "user_id", ownerID)
		return nil, common.NotFoundError("session not found or expired")
	}
	return &session, nil
}
