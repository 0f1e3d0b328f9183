package analysis

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DateRange is a closed calendar-date interval. A nil bound is unconstrained.
type DateRange struct {
	Start *civil.Date
	End   *civil.Date
}

// ErrInvertedRange indicates a start date after the end date.
var ErrInvertedRange = errors.New("start date is after end date")

// ParseDateRange parses ISO (YYYY-MM-DD) bounds; empty strings leave a side open.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if s := strings.TrimSpace(start); s != "" {
		d, err := civil.ParseDate(s)
		if err != nil {
			return DateRange{}, fmt.Errorf("parse start date: %w", err)
		}
		r.Start = &d
	}
	if s := strings.TrimSpace(end); s != "" {
		d, err := civil.ParseDate(s)
		if err != nil {
			return DateRange{}, fmt.Errorf("parse end date: %w", err)
		}
		r.End = &d
	}
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvertedRange, r.Start, r.End)
	}
	return r, nil
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool { return r.Start == nil && r.End == nil }

// Contains reports whether t's calendar date lies within the range, inclusive.
func (r DateRange) Contains(t time.Time) bool {
	d := civil.DateOf(t)
	if r.Start != nil && d.Before(*r.Start) {
		return false
	}
	if r.End != nil && d.After(*r.End) {
		return false
	}
	return true
}

func (r DateRange) String() string {
	s, e := "…", "…"
	if r.Start != nil {
		s = r.Start.String()
	}
	if r.End != nil {
		e = r.End.String()
	}
	return s + ".." + e
}

// Filter returns the records whose timestamp falls within r, preserving order.
// The input is never modified; with no bounds the input snapshot is returned.
func Filter(ds *Dataset, r DateRange) *Dataset {
	if ds == nil || r.IsZero() {
		return ds
	}
	out := make([]Record, 0, len(ds.records))
	for _, rec := range ds.rows() {
		if rec.Timestamp.Valid && r.Contains(rec.Timestamp.Value) {
			out = append(out, rec)
		}
	}
	return ds.derive(out)
}
