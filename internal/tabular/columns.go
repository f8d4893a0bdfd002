package tabular

// fieldAliases maps each logical field to the ordered list of header names it
// may appear under. Lookup is exact-match, first alias wins. Adding an alias is
// a data change, not a control-flow change.
var fieldAliases = map[string][]string{
	"vendor":   {"Vendor", "vendor", "Merchant", "merchant", "Payee", "payee"},
	"amount":   {"Amount", "amount", "Total", "total"},
	"date":     {"Date", "date", "TransactionDate", "transaction_date"},
	"desc":     {"Description", "description", "Memo", "memo"},
	"invoice":  {"Invoice", "invoice", "InvoiceNumber", "invoice_number"},
	"currency": {"Currency", "currency"},
	"notes":    {"Notes", "notes"},
}

// rowMap is one data row keyed by the exact header strings of the file.
type rowMap map[string]any

// lookup resolves a logical field against the row using the alias table.
func (r rowMap) lookup(field string) (any, bool) {
	for _, alias := range fieldAliases[field] {
		if v, ok := r[alias]; ok {
			return v, true
		}
	}
	return nil, false
}
