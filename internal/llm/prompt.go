package llm

import "strings"

// BuildSystemPrompt fixes the output contract: a single JSON object with the
// expense field subset and nothing else.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a financial document parser. You receive the contents of one receipt or invoice and return ONLY a single JSON object, no prose, no markdown.",
		"The object has exactly these keys: vendorName, amount, transactionDate, description, invoiceNumber, currency, lineItems, confidence.",
		"Use ISO-8601 dates (YYYY-MM-DD) for transactionDate.",
		"amount is the grand total as a plain decimal string with no currency symbol.",
		"currency is a 3-letter ISO 4217 code; default to USD if uncertain.",
		"lineItems is a short comma-separated list of visible item names.",
		"confidence is your own extraction confidence: high, medium, or low.",
		"Never output null. If a field is not present in the document, omit it.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the extracted document text for a text-only request.
// Long documents are truncated; receipt totals live near the top or bottom and
// 6k characters is plenty.
func BuildUserPrompt(text string) string {
	const maxChars = 6000
	var b strings.Builder
	b.WriteString("Document text:\n")
	text = strings.TrimSpace(text)
	if len(text) > maxChars {
		b.WriteString(text[:maxChars])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}

// BuildExpenseJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. The response is validated against it locally as a confidence
// signal; a validation failure downgrades confidence but never raises.
func BuildExpenseJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"vendorName":      map[string]any{"type": "string", "minLength": 1},
			"amount":          map[string]any{"type": "string", "pattern": `^\d+(\.\d{1,2})?$`},
			"transactionDate": map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"description":     map[string]any{"type": "string"},
			"invoiceNumber":   map[string]any{"type": "string"},
			"currency":        map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
			"lineItems":       map[string]any{"type": "string"},
			"confidence":      map[string]any{"type": "string", "enum": []string{"high", "medium", "low"}},
		},
		"required": []string{"vendorName", "amount"},
	}
}
