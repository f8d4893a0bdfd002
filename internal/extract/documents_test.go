package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/solobooks/solobooks/constants"
)

// fakeExtractor returns canned responses without touching the network.
type fakeExtractor struct {
	response []byte
	err      error
	lastText string
	lastMime string
}

func (f *fakeExtractor) ExtractFromText(_ context.Context, text string) ([]byte, error) {
	f.lastText = text
	return f.response, f.err
}

func (f *fakeExtractor) ExtractFromImage(_ context.Context, _ []byte, mimeType string) ([]byte, error) {
	f.lastMime = mimeType
	return f.response, f.err
}

func TestFromImageWellFormedResponse(t *testing.T) {
	fe := &fakeExtractor{response: []byte(`{"vendorName":"Uber","amount":"23.50","transactionDate":"2024-04-02","currency":"usd","confidence":"high"}`)}
	svc := NewService(fe, nil)

	rec, err := svc.FromImage(context.Background(), []byte("fake-jpeg"), "image/jpeg")
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if rec.VendorName == nil || *rec.VendorName != "Uber" {
		t.Errorf("vendor = %v", rec.VendorName)
	}
	if rec.Amount == nil || *rec.Amount != 23.50 {
		t.Errorf("amount = %v", rec.Amount)
	}
	if rec.TransactionDate == nil || *rec.TransactionDate != "2024-04-02" {
		t.Errorf("date = %v", rec.TransactionDate)
	}
	if rec.CurrencyCode != "USD" {
		t.Errorf("currency = %q", rec.CurrencyCode)
	}
	if rec.Confidence != constants.ConfidenceHigh {
		t.Errorf("confidence = %q", rec.Confidence)
	}
	if fe.lastMime != "image/jpeg" {
		t.Errorf("mime passed through = %q", fe.lastMime)
	}
}

func TestFromImageFencedResponse(t *testing.T) {
	fe := &fakeExtractor{response: []byte("```json\n{\"vendorName\":\"Lyft\",\"amount\":\"12.00\"}\n```")}
	rec, err := NewService(fe, nil).FromImage(context.Background(), []byte("x"), "image/png")
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if rec.VendorName == nil || *rec.VendorName != "Lyft" {
		t.Errorf("fenced response not parsed: %+v", rec)
	}
}

func TestFromImageMalformedResponseDegrades(t *testing.T) {
	fe := &fakeExtractor{response: []byte("Sorry, I cannot read this image.")}
	rec, err := NewService(fe, nil).FromImage(context.Background(), []byte("x"), "image/png")
	if err != nil {
		t.Fatalf("malformed response must not error: %v", err)
	}
	if rec.Confidence != constants.ConfidenceLow {
		t.Errorf("confidence = %q, want low", rec.Confidence)
	}
	if rec.VendorName != nil || rec.Amount != nil || rec.TransactionDate != nil {
		t.Errorf("fields must be absent on parse failure: %+v", rec)
	}
	if rec.RawResponse == "" {
		t.Error("raw response diagnostic missing")
	}
}

func TestFromImageTransportErrorRaised(t *testing.T) {
	fe := &fakeExtractor{err: errors.New("connection refused")}
	if _, err := NewService(fe, nil).FromImage(context.Background(), []byte("x"), "image/png"); err == nil {
		t.Fatal("transport error must be raised to the caller")
	}
}

func TestFromPDFNoTextLayer(t *testing.T) {
	fe := &fakeExtractor{response: []byte(`{}`)}
	_, err := NewService(fe, nil).FromPDF(context.Background(), []byte("not a pdf at all"))
	if err == nil {
		t.Fatal("expected hard failure for non-pdf bytes")
	}
	if fe.lastText != "" {
		t.Error("extraction service must not be called when the text layer is missing")
	}
}

func TestRecordFromResponseCoercesMalformedValues(t *testing.T) {
	fe := &fakeExtractor{response: []byte(`{"vendorName":"Acme","amount":"not-a-number","transactionDate":"nope","confidence":"medium"}`)}
	rec, err := NewService(fe, nil).FromImage(context.Background(), []byte("x"), "image/png")
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if rec.Amount != nil {
		t.Errorf("malformed amount must become absent, got %v", *rec.Amount)
	}
	if rec.TransactionDate != nil {
		t.Errorf("malformed date must become absent, got %v", *rec.TransactionDate)
	}
	if rec.VendorName == nil || *rec.VendorName != "Acme" {
		t.Errorf("vendor survives: %v", rec.VendorName)
	}
}
