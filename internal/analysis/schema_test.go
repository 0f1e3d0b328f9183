package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/cafesales-cli/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(lines ...string) *source.Table {
	tbl := &source.Table{Name: "t.csv", Header: strings.Split(lines[0], ",")}
	for _, l := range lines[1:] {
		tbl.Rows = append(tbl.Rows, strings.Split(l, ","))
	}
	return tbl
}

func TestValidateHeader_NamesExactlyTheMissingFields(t *testing.T) {
	err := ValidateHeader([]string{"Transaction Date", "Item", "Quantity", "Total Spent", "Location"})
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []Field{FieldUnitPrice, FieldPaymentMethod}, se.Missing)
	assert.False(t, se.Empty)
	assert.Contains(t, err.Error(), "Price Per Unit, Payment Method")

	require.NoError(t, ValidateHeader(strings.Split(salesHeader, ",")))
}

func TestClean_MissingFieldsCheckedBeforeEmptiness(t *testing.T) {
	_, _, err := Clean(table("Item,Quantity"), DefaultOptions())
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Len(t, se.Missing, 5)
	assert.False(t, se.Empty)
}

func TestClean_EmptyDataset(t *testing.T) {
	_, _, err := Clean(table(salesHeader), DefaultOptions())
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.Empty)
	assert.Empty(t, se.Missing)
	assert.Equal(t, "data file is empty", err.Error())
}

func TestClean_DropsOnlyRowsWithoutTimestamp(t *testing.T) {
	ds, stats, err := Clean(table(fiveRowCSV...), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, 5, stats.RawRows)
	assert.Equal(t, 4, stats.Kept)
	assert.Equal(t, 1, stats.DroppedRows)
	assert.Equal(t, 1, stats.Invalid[FieldTimestamp])
	assert.Equal(t, 1, stats.Invalid[FieldTotalSpent])

	for i := 0; i < ds.Len(); i++ {
		assert.True(t, ds.At(i).Timestamp.Valid, "record %d kept without timestamp", i)
	}
	tea := ds.At(2)
	assert.Equal(t, "TXN_3", tea.ID)
	assert.False(t, tea.TotalSpent.Valid, "non-numeric total must be missing")
	assert.True(t, tea.Quantity.Valid)
	assert.Equal(t, "Tea", tea.Item.Value)
}

func TestClean_ColumnOrderAndExtraColumns(t *testing.T) {
	ds, _, err := Clean(table(
		"Location,Notes,Total Spent,Payment Method,Price Per Unit,Quantity,Item,Transaction Date",
		"Takeaway,hello,7.5,Cash,2.5,3,Juice,2023-05-01 09:15",
	), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	r := ds.At(0)
	assert.Equal(t, "Juice", r.Item.Value)
	assert.Equal(t, 3.0, r.Quantity.Value)
	assert.Equal(t, "7.50", r.TotalSpent.Value.StringFixed(2))
	assert.Equal(t, 9, r.Timestamp.Value.Hour())
	assert.Empty(t, r.ID)
	assert.Contains(t, ds.Columns(), "Notes")
}

func TestClean_BlankCellsAreMissingNotInvalid(t *testing.T) {
	ds, stats, err := Clean(table(
		salesHeader,
		"TXN_1,,,,,,,2023-01-01",
	), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	r := ds.At(0)
	for _, f := range []Field{FieldItem, FieldQuantity, FieldUnitPrice, FieldTotalSpent, FieldPaymentMethod, FieldLocation} {
		assert.True(t, r.Missing(f), "%s should be missing", f)
	}
	assert.Zero(t, stats.Invalid[FieldQuantity])
	assert.Zero(t, stats.Invalid[FieldTotalSpent])
}

func TestClean_NilAndBlankTables(t *testing.T) {
	for _, tbl := range []*source.Table{nil, {Name: "blank.csv"}} {
		_, _, err := Clean(tbl, DefaultOptions())
		var se *SchemaError
		require.True(t, errors.As(err, &se))
		assert.True(t, se.Empty)
	}
}

func TestClean_AllTimestampsInvalidYieldsEmptyDataset(t *testing.T) {
	ds, stats, err := Clean(table(
		salesHeader,
		"TXN_1,Coffee,1,2,2,Cash,In-store,ERROR",
		"TXN_2,Coffee,1,2,2,Cash,In-store,",
	), DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, ds.Len())
	assert.Equal(t, 2, stats.DroppedRows)
	assert.Equal(t, 1, stats.Invalid[FieldTimestamp])
}
