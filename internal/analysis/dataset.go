package analysis

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is one cleaned transaction. Any field may be missing except, in a
// cleaned Dataset, the timestamp.
type Record struct {
	ID            string               `json:"id,omitempty"`
	Timestamp     Opt[time.Time]       `json:"transaction_date"`
	Item          Opt[string]          `json:"item"`
	Quantity      Opt[float64]         `json:"quantity"`
	UnitPrice     Opt[decimal.Decimal] `json:"price_per_unit"`
	TotalSpent    Opt[decimal.Decimal] `json:"total_spent"`
	PaymentMethod Opt[string]          `json:"payment_method"`
	Location      Opt[string]          `json:"location"`
}

// Number returns a numeric field as float64. ok is false for non-numeric fields.
func (r Record) Number(f Field) (v Opt[float64], ok bool) {
	switch f {
	case FieldQuantity:
		return r.Quantity, true
	case FieldUnitPrice:
		return decimalToFloat(r.UnitPrice), true
	case FieldTotalSpent:
		return decimalToFloat(r.TotalSpent), true
	}
	return Opt[float64]{}, false
}

// Missing reports whether field f is missing on this record.
func (r Record) Missing(f Field) bool {
	switch f {
	case FieldTimestamp:
		return !r.Timestamp.Valid
	case FieldItem:
		return !r.Item.Valid
	case FieldQuantity:
		return !r.Quantity.Valid
	case FieldUnitPrice:
		return !r.UnitPrice.Valid
	case FieldTotalSpent:
		return !r.TotalSpent.Valid
	case FieldPaymentMethod:
		return !r.PaymentMethod.Valid
	case FieldLocation:
		return !r.Location.Valid
	case FieldTransactionID:
		return r.ID == ""
	}
	return false
}

func decimalToFloat(d Opt[decimal.Decimal]) Opt[float64] {
	if !d.Valid {
		return Opt[float64]{}
	}
	return Some(d.Value.InexactFloat64())
}

// Dataset is an immutable, ordered snapshot of records sharing the transaction
// schema. Consumers read it concurrently; derivations produce new snapshots.
type Dataset struct {
	id      string
	columns []string
	records []Record
}

// NewDataset builds a snapshot from already-typed records. The slice is copied.
func NewDataset(records []Record) *Dataset {
	cols := make([]string, len(RequiredFields))
	for i, f := range RequiredFields {
		cols[i] = string(f)
	}
	return newDataset(cols, slices.Clone(records))
}

func newDataset(columns []string, records []Record) *Dataset {
	return &Dataset{id: uuid.NewString(), columns: columns, records: records}
}

// derive returns a new snapshot over records with the same columns.
func (d *Dataset) derive(records []Record) *Dataset {
	return newDataset(d.columns, records)
}

func (d *Dataset) rows() []Record {
	if d == nil {
		return nil
	}
	return d.records
}

// ID identifies this snapshot. Every derived snapshot gets a fresh ID.
func (d *Dataset) ID() string {
	if d == nil {
		return ""
	}
	return d.id
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the i-th record.
func (d *Dataset) At(i int) Record { return d.records[i] }

// Records returns a copy of the records in order.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return slices.Clone(d.records)
}

// Columns returns the source column names this snapshot was built from.
func (d *Dataset) Columns() []string {
	if d == nil {
		return nil
	}
	return slices.Clone(d.columns)
}
