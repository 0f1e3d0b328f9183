package analysis

import "strings"

// Field names a column of the transaction table, using the source header text.
type Field string

const (
	FieldTimestamp     Field = "Transaction Date"
	FieldItem          Field = "Item"
	FieldQuantity      Field = "Quantity"
	FieldUnitPrice     Field = "Price Per Unit"
	FieldTotalSpent    Field = "Total Spent"
	FieldPaymentMethod Field = "Payment Method"
	FieldLocation      Field = "Location"

	// FieldTransactionID is optional; it is carried through when present.
	FieldTransactionID Field = "Transaction ID"
)

// RequiredFields lists the columns every source must provide, in canonical order.
var RequiredFields = []Field{
	FieldTimestamp,
	FieldItem,
	FieldQuantity,
	FieldUnitPrice,
	FieldTotalSpent,
	FieldPaymentMethod,
	FieldLocation,
}

var knownFields = []Field{
	FieldTransactionID,
	FieldTimestamp,
	FieldItem,
	FieldQuantity,
	FieldUnitPrice,
	FieldTotalSpent,
	FieldPaymentMethod,
	FieldLocation,
}

// NumericFields are the fields eligible for outlier detection.
var NumericFields = []Field{FieldQuantity, FieldUnitPrice, FieldTotalSpent}

// IsNumeric reports whether f holds numeric values.
func (f Field) IsNumeric() bool {
	switch f {
	case FieldQuantity, FieldUnitPrice, FieldTotalSpent:
		return true
	}
	return false
}

// ParseField resolves user input such as "total_spent" or "price-per-unit"
// to a known field.
func ParseField(s string) (Field, bool) {
	norm := normalizeName(s)
	for _, f := range knownFields {
		if normalizeName(string(f)) == norm {
			return f, true
		}
	}
	return "", false
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
