package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnparsable wraps any shape surprise in the model output. Callers degrade
// to a low-confidence empty record; they never see a raw json error.
var ErrUnparsable = errors.New("extraction response not parsable")

// ParseExtraction turns a raw model response into ExpenseFields. It is pure
// and defensive: markdown code fences are stripped, the payload is decoded
// into a loose map, and field values are coerced individually: a malformed
// amount drops that field rather than failing the parse. Only a payload that
// is not a JSON object at all returns ErrUnparsable.
func ParseExtraction(raw []byte) (ExpenseFields, error) {
	content := StripCodeFences(string(raw))
	if content == "" {
		return ExpenseFields{}, fmt.Errorf("%w: empty response", ErrUnparsable)
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(content), &m); err != nil {
		return ExpenseFields{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	// A bare JSON null unmarshals into a nil map without error.
	if m == nil {
		return ExpenseFields{}, fmt.Errorf("%w: null response", ErrUnparsable)
	}

	out := ExpenseFields{
		VendorName:      stringField(m, "vendorName"),
		TransactionDate: stringField(m, "transactionDate"),
		Description:     stringField(m, "description"),
		InvoiceNumber:   stringField(m, "invoiceNumber"),
		Currency:        stringField(m, "currency"),
		LineItems:       stringField(m, "lineItems"),
		Confidence:      strings.ToLower(stringField(m, "confidence")),
	}

	// Models occasionally emit the amount as a JSON number despite the schema.
	switch v := m["amount"].(type) {
	case string:
		out.Amount = strings.TrimSpace(v)
	case float64:
		out.Amount = fmt.Sprintf("%.2f", v)
	}

	// lineItems sometimes comes back as an array of strings.
	if arr, ok := m["lineItems"].([]any); ok {
		items := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok && s != "" {
				items = append(items, s)
			}
		}
		out.LineItems = strings.Join(items, ", ")
	}

	switch out.Confidence {
	case "high", "medium", "low":
	default:
		out.Confidence = ""
	}
	return out, nil
}

// StripCodeFences removes an optional ```json ... ``` wrapper around the
// payload, a habit models keep despite instructions.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		// drop the language tag line ("json", "JSON", or empty)
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
