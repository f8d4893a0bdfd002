package ingestion

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/solobooks/solobooks/constants"
	"github.com/solobooks/solobooks/internal/common"
	"github.com/solobooks/solobooks/internal/entity"
	"github.com/solobooks/solobooks/internal/normalize"
	"github.com/solobooks/solobooks/internal/repository"
)

// ApprovedExpense carries the user's review decision for one staged record.
// Nil fields mean "keep what was extracted"; set fields override it.
type ApprovedExpense struct {
	TempID          string     `json:"temp_id"`
	VendorName      *string    `json:"vendor_name,omitempty"`
	Amount          *float64   `json:"amount,omitempty"`
	TransactionDate *string    `json:"transaction_date,omitempty"`
	Description     *string    `json:"description,omitempty"`
	InvoiceNumber   *string    `json:"invoice_number,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CurrencyCode    *string    `json:"currency_code,omitempty"`
	CategoryID      *uuid.UUID `json:"category_id,omitempty"`
	PaymentMethodID *uuid.UUID `json:"payment_method_id,omitempty"`
}

// FailedExpense reports one approved record that could not be created.
type FailedExpense struct {
	TempID   string `json:"temp_id"`
	FileName string `json:"file_name,omitempty"`
	Reason   string `json:"reason"`
}

// ConfirmResult reports per-item outcomes. Partial success is expected and
// reported, never treated as a batch failure.
type ConfirmResult struct {
	Created []entity.Expense `json:"created"`
	Failed  []FailedExpense  `json:"failed"`
}

// Confirm materializes the approved records of a staged session as permanent
// expenses, attaches the original file to each created expense, and consumes
// the session. Each expense is created in its own transaction so one bad
// record cannot abort its siblings. A second Confirm with the same session id
// fails with not-found: the session is deleted after first use, which is what
// prevents double-booking.
func (s *Service) Confirm(ctx context.Context, sessionID string, ownerID uuid.UUID, approved []ApprovedExpense) (*ConfirmResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, common.InvalidArgumentError("session id is required")
	}
	if len(approved) == 0 {
		return nil, common.InvalidArgumentError("no expenses to confirm")
	}
	for i := range approved {
		if strings.TrimSpace(approved[i].TempID) == "" {
			return nil, common.InvalidArgumentErrorf("expense %d is missing temp_id", i)
		}
	}

	session, err := s.SessionData(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	s.logger.Info("confirm.start", "session_id", sessionID, "user_id", ownerID, "approved", len(approved))

	result := &ConfirmResult{}
	for _, item := range approved {
		rec := session.FindRecord(item.TempID)
		if rec == nil {
			result.Failed = append(result.Failed, FailedExpense{
				TempID: item.TempID,
				Reason: "no extracted record with this temp_id in session",
			})
			continue
		}

		req, err := mergeFields(ownerID, rec, &item)
		if err != nil {
			result.Failed = append(result.Failed, FailedExpense{
				TempID:   item.TempID,
				FileName: rec.FileName,
				Reason:   err.Error(),
			})
			continue
		}

		// A category id, extracted or client-edited, must belong to the
		// confirming user. A lookup error only loses the check, not the
		// expense: assignment is advisory.
		if req.CategoryID != nil && s.categories != nil {
			ok, err := s.categories.Exists(ctx, ownerID, *req.CategoryID)
			if err != nil {
				s.logger.Warn("confirm.category.check_failed", "temp_id", item.TempID, "error", err)
			} else if !ok {
				result.Failed = append(result.Failed, FailedExpense{
					TempID:   item.TempID,
					FileName: rec.FileName,
					Reason:   fmt.Sprintf("category %s does not belong to user", req.CategoryID),
				})
				continue
			}
		}

		exp, err := s.expenses.CreateExpense(ctx, req)
		if err != nil {
			s.logger.Warn("confirm.expense.failed", "temp_id", item.TempID, "error", err)
			result.Failed = append(result.Failed, FailedExpense{
				TempID:   item.TempID,
				FileName: rec.FileName,
				Reason:   err.Error(),
			})
			continue
		}

		s.attachOriginal(ctx, session, rec, exp)
		result.Created = append(result.Created, *exp)
	}

	// Consume the session exactly once, however many items failed. If the
	// delete itself fails the TTL is the backstop.
	if err := s.store.Delete(ctx, constants.SessionKeyPrefix+sessionID); err != nil {
		s.logger.Error("confirm.session.delete_failed", "session_id", sessionID, "error", err)
	}

	s.logger.Info("confirm.done",
		"session_id", sessionID,
		"created", len(result.Created),
		"failed", len(result.Failed),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// attachOriginal stores the staged source file and records it against the
// created expense. Best effort: the expense stands even when the attachment
// write fails.
func (s *Service) attachOriginal(ctx context.Context, session *entity.IngestionSession, rec *entity.ExtractedRecord, exp *entity.Expense) {
	staged := session.FindFile(rec.FileName)
	if staged == nil {
		return
	}
	data, err := base64.StdEncoding.DecodeString(staged.Base64Data)
	if err != nil {
		s.logger.Warn("confirm.attachment.decode_failed", "expense_id", exp.ID, "file", staged.OriginalName, "error", err)
		return
	}

	path := fmt.Sprintf("expenses/%s/%s/%s", exp.UserID, exp.ID, staged.OriginalName)
	key, err := s.blobs.Upload(ctx, data, path, staged.MimeType)
	if err != nil {
		s.logger.Warn("confirm.attachment.upload_failed", "expense_id", exp.ID, "file", staged.OriginalName, "error", err)
		return
	}

	_, err = s.attachments.CreateAttachment(ctx, &entity.Attachment{
		UserID:     exp.UserID,
		EntityType: "expense",
		EntityID:   exp.ID,
		FileName:   staged.OriginalName,
		MimeType:   staged.MimeType,
		Size:       int64(len(data)),
		StorageKey: key,
	})
	if err != nil {
		s.logger.Warn("confirm.attachment.record_failed", "expense_id", exp.ID, "file", staged.OriginalName, "error", err)
	}
}

// mergeFields layers the client's edits over the extracted record and shapes
// the result for creation. Missing required fields surface as per-item
// failures, not batch errors.
func mergeFields(ownerID uuid.UUID, rec *entity.ExtractedRecord, item *ApprovedExpense) (*repository.CreateExpenseRequest, error) {
	req := &repository.CreateExpenseRequest{
		UserID:          ownerID,
		Description:     rec.Description,
		InvoiceNumber:   rec.InvoiceNumber,
		Notes:           rec.Notes,
		CurrencyCode:    normalize.Currency(rec.CurrencyCode),
		CategoryID:      rec.CategoryID,
		PaymentMethodID: rec.PaymentMethodID,
	}
	if rec.VendorName != nil {
		req.VendorName = *rec.VendorName
	}
	if rec.Amount != nil {
		req.Amount = *rec.Amount
	}
	dateStr := ""
	if rec.TransactionDate != nil {
		dateStr = *rec.TransactionDate
	}

	if item.VendorName != nil {
		req.VendorName = *item.VendorName
	}
	if item.Amount != nil {
		req.Amount = *item.Amount
	}
	if item.TransactionDate != nil {
		dateStr = *item.TransactionDate
	}
	if item.Description != nil {
		req.Description = *item.Description
	}
	if item.InvoiceNumber != nil {
		req.InvoiceNumber = *item.InvoiceNumber
	}
	if item.Notes != nil {
		req.Notes = *item.Notes
	}
	if item.CurrencyCode != nil {
		req.CurrencyCode = normalize.Currency(*item.CurrencyCode)
	}
	if item.CategoryID != nil {
		req.CategoryID = item.CategoryID
	}
	if item.PaymentMethodID != nil {
		req.PaymentMethodID = item.PaymentMethodID
	}

	if dateStr == "" {
		return nil, fmt.Errorf("transaction date is required")
	}
	txDate, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction date %q", dateStr)
	}
	req.TxDate = txDate
	return req, nil
}
