package analysis

import (
	"time"

	"github.com/KaramelBytes/cafesales-cli/internal/source"
)

// CleanStats describes what coercion did to a raw table. Values are diagnostic
// only; they never cause a load to fail.
type CleanStats struct {
	RawRows int `json:"raw_rows"`
	Kept    int `json:"kept"`
	// DroppedRows counts records removed because their timestamp was missing.
	DroppedRows int `json:"dropped_rows"`
	// Invalid counts non-blank cells that failed to coerce, per field.
	Invalid map[Field]int `json:"invalid"`
}

// ValidateHeader checks that every required field is present as a column.
func ValidateHeader(header []string) error {
	missing := missingColumns(header)
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

func missingColumns(header []string) []Field {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []Field
	for _, f := range RequiredFields {
		if _, ok := have[string(f)]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Clean validates a raw table and coerces it into a Dataset. Structural
// problems fail the whole table; dirty cells become missing values. Rows whose
// timestamp cannot be parsed are removed.
func Clean(tbl *source.Table, opt Options) (*Dataset, CleanStats, error) {
	stats := CleanStats{Invalid: map[Field]int{}}
	if tbl == nil || (len(tbl.Header) == 0 && len(tbl.Rows) == 0) {
		return nil, stats, &SchemaError{Empty: true}
	}
	if err := ValidateHeader(tbl.Header); err != nil {
		return nil, stats, err
	}
	if len(tbl.Rows) == 0 {
		return nil, stats, &SchemaError{Empty: true}
	}

	idx := make(map[Field]int, len(RequiredFields)+1)
	for i := len(tbl.Header) - 1; i >= 0; i-- {
		idx[Field(tbl.Header[i])] = i
	}
	idCol, hasID := idx[FieldTransactionID]

	stats.RawRows = len(tbl.Rows)
	records := make([]Record, 0, len(tbl.Rows))
	parseTS := ParseTimestamp
	if tbl.SerialDates {
		parseTS = func(raw string) Opt[time.Time] { return ParseSerialTimestamp(raw, tbl.Date1904) }
	}
	for _, row := range tbl.Rows {
		cell := func(f Field) string { return row[idx[f]] }
		rec := Record{
			Timestamp:     parseTS(cell(FieldTimestamp)),
			Item:          ParseText(cell(FieldItem)),
			Quantity:      ParseNumber(cell(FieldQuantity), opt),
			UnitPrice:     ParseMoney(cell(FieldUnitPrice), opt),
			TotalSpent:    ParseMoney(cell(FieldTotalSpent), opt),
			PaymentMethod: ParseText(cell(FieldPaymentMethod)),
			Location:      ParseText(cell(FieldLocation)),
		}
		if hasID {
			rec.ID = ParseText(row[idCol]).Or("")
		}
		for _, f := range []Field{FieldTimestamp, FieldQuantity, FieldUnitPrice, FieldTotalSpent} {
			if rec.Missing(f) && !isNAToken(cell(f)) {
				stats.Invalid[f]++
			}
		}
		if !rec.Timestamp.Valid {
			stats.DroppedRows++
			continue
		}
		records = append(records, rec)
	}
	stats.Kept = len(records)

	cols := make([]string, len(tbl.Header))
	copy(cols, tbl.Header)
	return newDataset(cols, records), stats, nil
}
