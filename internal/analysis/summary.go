package analysis

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeSpan is the [Start, End] extent of the timestamps in a dataset.
type TimeSpan struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Summary describes dataset health and key metrics for one snapshot. It is
// not updated when the dataset is refiltered; recompute it instead.
type Summary struct {
	DatasetID       string          `json:"dataset_id"`
	TotalRecords    int             `json:"total_records"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	UniqueItems     int             `json:"unique_items"`
	UniqueLocations int             `json:"unique_locations"`
	// DateRange is missing for an empty dataset.
	DateRange      Opt[TimeSpan]  `json:"date_range"`
	PaymentMethods map[string]int `json:"payment_methods"`
	MissingValues  map[Field]int  `json:"missing_values"`
}

// Summarize computes the Summary of ds in one pass. It fails only when the
// snapshot lacks required columns.
func Summarize(ds *Dataset) (Summary, error) {
	if ds == nil {
		ds = NewDataset(nil)
	}
	if missing := missingColumns(ds.columns); len(missing) > 0 {
		return Summary{}, &SchemaError{Missing: missing}
	}
	s := Summary{
		DatasetID:      ds.id,
		TotalRecords:   len(ds.records),
		TotalSales:     decimal.Zero,
		PaymentMethods: map[string]int{},
		MissingValues:  make(map[Field]int, len(RequiredFields)),
	}
	for _, f := range RequiredFields {
		s.MissingValues[f] = 0
	}
	items := map[string]struct{}{}
	locations := map[string]struct{}{}
	var span TimeSpan
	seenTime := false
	for _, rec := range ds.rows() {
		for _, f := range RequiredFields {
			if rec.Missing(f) {
				s.MissingValues[f]++
			}
		}
		if rec.TotalSpent.Valid {
			s.TotalSales = s.TotalSales.Add(rec.TotalSpent.Value)
		}
		if rec.Item.Valid {
			items[rec.Item.Value] = struct{}{}
		}
		if rec.Location.Valid {
			locations[rec.Location.Value] = struct{}{}
		}
		if rec.PaymentMethod.Valid {
			s.PaymentMethods[rec.PaymentMethod.Value]++
		}
		if ts, ok := rec.Timestamp.Get(); ok {
			if !seenTime || ts.Before(span.Start) {
				span.Start = ts
			}
			if !seenTime || ts.After(span.End) {
				span.End = ts
			}
			seenTime = true
		}
	}
	s.UniqueItems = len(items)
	s.UniqueLocations = len(locations)
	if seenTime {
		s.DateRange = Some(span)
	}
	return s, nil
}

// StaleFor reports whether s was computed for a different snapshot than ds.
func (s Summary) StaleFor(ds *Dataset) bool {
	return s.DatasetID != ds.ID()
}

// MissingFields returns the fields with at least one missing value, in
// canonical order.
func (s Summary) MissingFields() []Field {
	var out []Field
	for _, f := range RequiredFields {
		if s.MissingValues[f] > 0 {
			out = append(out, f)
		}
	}
	return out
}
