package analysis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quantityDataset(qs ...string) *Dataset {
	var recs []Record
	for i, q := range qs {
		recs = append(recs, Record{
			Timestamp: at(fmt.Sprintf("2023-01-%02d", i+1)),
			Quantity:  ParseNumber(q, DefaultOptions()),
		})
	}
	return NewDataset(recs)
}

func TestDetectOutliers_Fence(t *testing.T) {
	ds := quantityDataset("1", "2", "3", "", "4", "5", "6", "7", "8", "100")
	rep, err := DetectOutliers(ds, FieldQuantity)
	require.NoError(t, err)

	assert.Equal(t, 9, rep.N)
	assert.InDelta(t, 3, rep.Q1, 1e-9)
	assert.InDelta(t, 7, rep.Q3, 1e-9)
	assert.InDelta(t, 4, rep.IQR, 1e-9)
	assert.InDelta(t, -9, rep.Lower, 1e-9)
	assert.InDelta(t, 19, rep.Upper, 1e-9)
	assert.Equal(t, []int{9}, rep.Indices)
	assert.Equal(t, 100.0, rep.Min)
	assert.Equal(t, 100.0, rep.Max)
}

func TestDetectOutliers_BoundaryValuesAreInside(t *testing.T) {
	// Q1=1, Q3=2, IQR=1, fence [-2, 5].
	ds := quantityDataset("1", "1", "2", "2", "5", "-2")
	rep, err := DetectOutliers(ds, FieldQuantity)
	require.NoError(t, err)
	assert.Empty(t, rep.Indices)
}

func TestDetectOutliers_MissingNeverReported(t *testing.T) {
	ds := quantityDataset("", "ERROR", "")
	rep, err := DetectOutliers(ds, FieldQuantity)
	require.NoError(t, err)
	assert.Zero(t, rep.N)
	assert.NotNil(t, rep.Indices)
	assert.Empty(t, rep.Indices)
}

func TestDetectOutliers_EmptyDataset(t *testing.T) {
	rep, err := DetectOutliers(NewDataset(nil), FieldTotalSpent)
	require.NoError(t, err)
	assert.Empty(t, rep.Indices)
}

func TestDetectOutliers_RejectsTextField(t *testing.T) {
	_, err := DetectOutliers(NewDataset(nil), FieldItem)
	assert.True(t, errors.Is(err, ErrNotNumeric))
}

func TestDetectOutliers_DoesNotAlterDataset(t *testing.T) {
	ds := quantityDataset("1", "2", "3", "4", "500")
	before := ds.Records()
	_ = DetectAllOutliers(ds)
	assert.Equal(t, before, ds.Records())
}

func TestDetectAllOutliers_CoversNumericFields(t *testing.T) {
	ds := NewDataset([]Record{
		{Timestamp: at("2023-01-01"), UnitPrice: money("2"), TotalSpent: money("4")},
		{Timestamp: at("2023-01-02"), UnitPrice: money("2"), TotalSpent: money("4")},
		{Timestamp: at("2023-01-03"), UnitPrice: money("2"), TotalSpent: money("4")},
		{Timestamp: at("2023-01-04"), UnitPrice: money("2"), TotalSpent: money("4")},
		{Timestamp: at("2023-01-05"), UnitPrice: money("2"), TotalSpent: money("4000")},
	})
	reps := DetectAllOutliers(ds)
	require.Len(t, reps, 3)
	assert.Equal(t, FieldQuantity, reps[0].Field)
	assert.Zero(t, reps[0].N)
	assert.Equal(t, FieldUnitPrice, reps[1].Field)
	assert.Empty(t, reps[1].Indices)
	assert.Equal(t, FieldTotalSpent, reps[2].Field)
	assert.Equal(t, []int{4}, reps[2].Indices)
}

func TestQuantileLinearInterpolation(t *testing.T) {
	v := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, quantile(v, 0.25), 1e-9)
	assert.InDelta(t, 3.25, quantile(v, 0.75), 1e-9)
	assert.Equal(t, 1.0, quantile(v, 0))
	assert.Equal(t, 4.0, quantile(v, 1))
	assert.Zero(t, quantile(nil, 0.5))
}
