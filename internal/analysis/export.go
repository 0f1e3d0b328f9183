package analysis

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

// ExportTimeLayout is the timestamp format of exported records.
const ExportTimeLayout = "2006-01-02 15:04:05"

// ExportColumns is the header of an exported dataset.
var ExportColumns = append([]Field{FieldTransactionID}, RequiredFields...)

// WriteCSV writes the cleaned records of ds with a canonical header. Missing
// values are written as empty cells.
func WriteCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(ExportColumns))
	for i, f := range ExportColumns {
		header[i] = string(f)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range ds.rows() {
		if err := cw.Write(exportRow(rec)); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeCSV is WriteCSV into memory.
func EncodeCSV(ds *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportRow(r Record) []string {
	row := make([]string, 0, len(ExportColumns))
	row = append(row, r.ID)
	ts := ""
	if t, ok := r.Timestamp.Get(); ok {
		ts = t.Format(ExportTimeLayout)
	}
	row = append(row, ts, r.Item.Or(""))
	q := ""
	if v, ok := r.Quantity.Get(); ok {
		q = strconv.FormatFloat(v, 'f', -1, 64)
	}
	row = append(row, q)
	row = append(row, moneyCell(r.UnitPrice), moneyCell(r.TotalSpent))
	return append(row, r.PaymentMethod.Or(""), r.Location.Or(""))
}

func moneyCell(m Opt[decimal.Decimal]) string {
	if v, ok := m.Get(); ok {
		return v.String()
	}
	return ""
}
