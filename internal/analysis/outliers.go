package analysis

import (
	"fmt"
	"math"
	"sort"
)

// FenceMultiplier scales the IQR to form the outlier fence.
const FenceMultiplier = 3.0

// OutlierReport is the diagnostic result of fencing one numeric field.
// Lower/Upper and the quartiles are zero when no values were present.
type OutlierReport struct {
	Field   Field   `json:"field"`
	N       int     `json:"n"`
	Q1      float64 `json:"q1"`
	Q3      float64 `json:"q3"`
	IQR     float64 `json:"iqr"`
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Indices []int   `json:"indices"`
	// Min and Max span the outlying values only.
	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`
}

// Count returns the number of outlying records.
func (r OutlierReport) Count() int { return len(r.Indices) }

// DetectOutliers reports the indices of records whose value of f lies outside
// [Q1 - 3·IQR, Q3 + 3·IQR]. Missing values are ignored entirely.
func DetectOutliers(ds *Dataset, f Field) (OutlierReport, error) {
	rep := OutlierReport{Field: f, Indices: []int{}}
	if !f.IsNumeric() {
		return rep, fmt.Errorf("%w: %s", ErrNotNumeric, f)
	}
	n := ds.Len()
	vals := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if v, _ := ds.records[i].Number(f); v.Valid {
			vals = append(vals, v.Value)
		}
	}
	rep.N = len(vals)
	if len(vals) == 0 {
		return rep, nil
	}
	sort.Float64s(vals)
	rep.Q1 = quantile(vals, 0.25)
	rep.Q3 = quantile(vals, 0.75)
	rep.IQR = rep.Q3 - rep.Q1
	rep.Lower = rep.Q1 - FenceMultiplier*rep.IQR
	rep.Upper = rep.Q3 + FenceMultiplier*rep.IQR

	rep.Min, rep.Max = math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		v, _ := ds.records[i].Number(f)
		if !v.Valid || (v.Value >= rep.Lower && v.Value <= rep.Upper) {
			continue
		}
		rep.Indices = append(rep.Indices, i)
		rep.Min = math.Min(rep.Min, v.Value)
		rep.Max = math.Max(rep.Max, v.Value)
	}
	if len(rep.Indices) == 0 {
		rep.Min, rep.Max = 0, 0
	}
	return rep, nil
}

// DetectAllOutliers fences every numeric field.
func DetectAllOutliers(ds *Dataset) []OutlierReport {
	out := make([]OutlierReport, 0, len(NumericFields))
	for _, f := range NumericFields {
		rep, _ := DetectOutliers(ds, f)
		out = append(out, rep)
	}
	return out
}

// quantile uses linear interpolation between closest ranks over sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
