package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ViewName identifies one of the aggregate views.
type ViewName string

const (
	ViewDailySales          ViewName = "daily_sales"
	ViewTimeHeatmap         ViewName = "time_heatmap"
	ViewItemPerformance     ViewName = "item_performance"
	ViewLocationPerformance ViewName = "location_performance"
	ViewPaymentMethod       ViewName = "payment_method"
)

// ViewNames lists every view in a stable order.
var ViewNames = []ViewName{
	ViewDailySales,
	ViewTimeHeatmap,
	ViewItemPerformance,
	ViewLocationPerformance,
	ViewPaymentMethod,
}

// MissingKey groups records whose grouping field is missing, so that every
// view's sums add up to the dataset total.
const MissingKey = "(missing)"

// View is a read-only aggregate derived from a Dataset, flattened for renderers.
type View interface {
	Name() ViewName
	Columns() []string
	Rows() [][]string
	Len() int
}

// ParseViewName normalizes case and dashes and checks that the view exists.
func ParseViewName(name string) (ViewName, error) {
	n := ViewName(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	for _, v := range ViewNames {
		if v == n {
			return n, nil
		}
	}
	return "", &UnknownViewError{Name: name}
}

// Aggregate computes the view called name over ds.
func Aggregate(name string, ds *Dataset) (View, error) {
	n, err := ParseViewName(name)
	if err != nil {
		return nil, err
	}
	switch n {
	case ViewDailySales:
		return DailySales(ds), nil
	case ViewTimeHeatmap:
		return TimeHeatmap(ds), nil
	case ViewItemPerformance:
		return ItemPerformance(ds), nil
	case ViewLocationPerformance:
		return LocationPerformance(ds), nil
	case ViewPaymentMethod:
		return PaymentMethods(ds), nil
	}
	return nil, &UnknownViewError{Name: name}
}

// Totals aggregates the total-amount field. Count only includes records with
// an amount, so Mean = Sum / Count.
type Totals struct {
	Sum   decimal.Decimal `json:"sum"`
	Count int             `json:"count"`
	Mean  Opt[float64]    `json:"mean"`
}

func (t *Totals) add(v Opt[decimal.Decimal]) {
	if !v.Valid {
		return
	}
	t.Sum = t.Sum.Add(v.Value)
	t.Count++
}

func (t *Totals) finish() {
	if t.Count == 0 {
		t.Mean = None[float64]()
		return
	}
	t.Mean = Some(t.Sum.Div(decimal.NewFromInt(int64(t.Count))).InexactFloat64())
}

func (t Totals) cells() []string {
	mean := ""
	if m, ok := t.Mean.Get(); ok {
		mean = strconv.FormatFloat(m, 'f', 2, 64)
	}
	return []string{t.Sum.StringFixed(2), strconv.Itoa(t.Count), mean}
}

var totalsColumns = []string{"sum", "count", "mean"}

type group struct {
	key    string
	totals Totals
	units  float64
	items  map[string]struct{}
}

// groupBy buckets records by a text key, in ascending key order.
func groupBy(ds *Dataset, key func(Record) Opt[string]) []*group {
	byKey := map[string]*group{}
	for _, rec := range ds.rows() {
		k := key(rec).Or(MissingKey)
		g := byKey[k]
		if g == nil {
			g = &group{key: k, totals: Totals{Sum: decimal.Zero}, items: map[string]struct{}{}}
			byKey[k] = g
		}
		g.totals.add(rec.TotalSpent)
		if q, ok := rec.Quantity.Get(); ok {
			g.units += q
		}
		if it, ok := rec.Item.Get(); ok {
			g.items[it] = struct{}{}
		}
	}
	out := make([]*group, 0, len(byKey))
	for _, g := range byKey {
		g.totals.finish()
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// bySumDesc orders by sum descending, ties broken by key.
func bySumDesc(a, b decimal.Decimal, ka, kb string) bool {
	if c := a.Cmp(b); c != 0 {
		return c > 0
	}
	return ka < kb
}

// DailySalesRow aggregates one calendar date.
type DailySalesRow struct {
	Date civil.Date `json:"date"`
	Totals
}

// DailySalesView is sparse and ordered by date.
type DailySalesView []DailySalesRow

// DailySales groups by the calendar date of the timestamp.
func DailySales(ds *Dataset) DailySalesView {
	byDate := map[civil.Date]*DailySalesRow{}
	for _, rec := range ds.rows() {
		ts, ok := rec.Timestamp.Get()
		if !ok {
			continue
		}
		d := civil.DateOf(ts)
		row := byDate[d]
		if row == nil {
			row = &DailySalesRow{Date: d, Totals: Totals{Sum: decimal.Zero}}
			byDate[d] = row
		}
		row.add(rec.TotalSpent)
	}
	out := make(DailySalesView, 0, len(byDate))
	for _, row := range byDate {
		row.finish()
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (DailySalesView) Name() ViewName    { return ViewDailySales }
func (v DailySalesView) Len() int        { return len(v) }
func (DailySalesView) Columns() []string { return append([]string{"date"}, totalsColumns...) }
func (v DailySalesView) Rows() [][]string {
	rows := make([][]string, len(v))
	for i, r := range v {
		rows[i] = append([]string{r.Date.String()}, r.cells()...)
	}
	return rows
}

// SortBySum returns a copy ordered by revenue, highest first.
func (v DailySalesView) SortBySum() DailySalesView {
	out := append(DailySalesView(nil), v...)
	sort.SliceStable(out, func(i, j int) bool {
		return bySumDesc(out[i].Sum, out[j].Sum, out[i].Date.String(), out[j].Date.String())
	})
	return out
}

// weekdays in display order.
var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// HeatmapCell is the revenue of one (weekday, hour) slot.
type HeatmapCell struct {
	Day  time.Weekday    `json:"-"`
	Name string          `json:"day"`
	Hour int             `json:"hour"`
	Sum  decimal.Decimal `json:"sum"`
}

// HeatmapView is dense: 7 days × 24 hours, Monday first, hours ascending.
type HeatmapView []HeatmapCell

func heatIndex(day time.Weekday, hour int) int {
	return ((int(day)+6)%7)*24 + hour
}

// TimeHeatmap sums revenue by weekday and hour of day. Slots without sales
// are present with a zero sum.
func TimeHeatmap(ds *Dataset) HeatmapView {
	out := make(HeatmapView, 7*24)
	for _, d := range weekdays {
		for h := 0; h < 24; h++ {
			out[heatIndex(d, h)] = HeatmapCell{Day: d, Name: d.String(), Hour: h, Sum: decimal.Zero}
		}
	}
	for _, rec := range ds.rows() {
		ts, ok := rec.Timestamp.Get()
		if !ok || !rec.TotalSpent.Valid {
			continue
		}
		c := &out[heatIndex(ts.Weekday(), ts.Hour())]
		c.Sum = c.Sum.Add(rec.TotalSpent.Value)
	}
	return out
}

// Cell returns the slot for day and hour.
func (v HeatmapView) Cell(day time.Weekday, hour int) HeatmapCell {
	return v[heatIndex(day, hour)]
}

func (HeatmapView) Name() ViewName    { return ViewTimeHeatmap }
func (v HeatmapView) Len() int        { return len(v) }
func (HeatmapView) Columns() []string { return []string{"day", "hour", "sum"} }
func (v HeatmapView) Rows() [][]string {
	rows := make([][]string, len(v))
	for i, c := range v {
		rows[i] = []string{c.Name, fmt.Sprintf("%02d", c.Hour), c.Sum.StringFixed(2)}
	}
	return rows
}

// ItemRow aggregates one item.
type ItemRow struct {
	Item string `json:"item"`
	Totals
	UnitsSold float64 `json:"units_sold"`
}

// ItemView is sparse and ordered by item name.
type ItemView []ItemRow

// ItemPerformance groups by item, adding the quantity sold.
func ItemPerformance(ds *Dataset) ItemView {
	groups := groupBy(ds, func(r Record) Opt[string] { return r.Item })
	out := make(ItemView, len(groups))
	for i, g := range groups {
		out[i] = ItemRow{Item: g.key, Totals: g.totals, UnitsSold: g.units}
	}
	return out
}

func (ItemView) Name() ViewName    { return ViewItemPerformance }
func (v ItemView) Len() int        { return len(v) }
func (ItemView) Columns() []string { return []string{"item", "sum", "count", "mean", "units_sold"} }
func (v ItemView) Rows() [][]string {
	rows := make([][]string, len(v))
	for i, r := range v {
		row := append([]string{r.Item}, r.cells()...)
		rows[i] = append(row, strconv.FormatFloat(r.UnitsSold, 'f', -1, 64))
	}
	return rows
}

// SortBySum returns a copy ordered by revenue, highest first.
func (v ItemView) SortBySum() ItemView {
	out := append(ItemView(nil), v...)
	sort.SliceStable(out, func(i, j int) bool { return bySumDesc(out[i].Sum, out[j].Sum, out[i].Item, out[j].Item) })
	return out
}

// LocationRow aggregates one location.
type LocationRow struct {
	Location string `json:"location"`
	Totals
	DistinctItems int `json:"distinct_items"`
}

// LocationView is sparse and ordered by location name.
type LocationView []LocationRow

// LocationPerformance groups by location, adding the distinct item count.
func LocationPerformance(ds *Dataset) LocationView {
	groups := groupBy(ds, func(r Record) Opt[string] { return r.Location })
	out := make(LocationView, len(groups))
	for i, g := range groups {
		out[i] = LocationRow{Location: g.key, Totals: g.totals, DistinctItems: len(g.items)}
	}
	return out
}

func (LocationView) Name() ViewName { return ViewLocationPerformance }
func (v LocationView) Len() int     { return len(v) }
func (LocationView) Columns() []string {
	return []string{"location", "sum", "count", "mean", "distinct_items"}
}
func (v LocationView) Rows() [][]string {
	rows := make([][]string, len(v))
	for i, r := range v {
		row := append([]string{r.Location}, r.cells()...)
		rows[i] = append(row, strconv.Itoa(r.DistinctItems))
	}
	return rows
}

// SortBySum returns a copy ordered by revenue, highest first.
func (v LocationView) SortBySum() LocationView {
	out := append(LocationView(nil), v...)
	sort.SliceStable(out, func(i, j int) bool {
		return bySumDesc(out[i].Sum, out[j].Sum, out[i].Location, out[j].Location)
	})
	return out
}

// PaymentRow aggregates one payment method.
type PaymentRow struct {
	Method string `json:"payment_method"`
	Totals
}

// PaymentView is sparse and ordered by method name.
type PaymentView []PaymentRow

// PaymentMethods groups by payment method.
func PaymentMethods(ds *Dataset) PaymentView {
	groups := groupBy(ds, func(r Record) Opt[string] { return r.PaymentMethod })
	out := make(PaymentView, len(groups))
	for i, g := range groups {
		out[i] = PaymentRow{Method: g.key, Totals: g.totals}
	}
	return out
}

func (PaymentView) Name() ViewName    { return ViewPaymentMethod }
func (v PaymentView) Len() int        { return len(v) }
func (PaymentView) Columns() []string { return append([]string{"payment_method"}, totalsColumns...) }
func (v PaymentView) Rows() [][]string {
	rows := make([][]string, len(v))
	for i, r := range v {
		rows[i] = append([]string{r.Method}, r.cells()...)
	}
	return rows
}

// SortBySum returns a copy ordered by revenue, highest first.
func (v PaymentView) SortBySum() PaymentView {
	out := append(PaymentView(nil), v...)
	sort.SliceStable(out, func(i, j int) bool {
		return bySumDesc(out[i].Sum, out[j].Sum, out[i].Method, out[j].Method)
	})
	return out
}
