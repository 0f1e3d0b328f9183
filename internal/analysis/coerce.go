package analysis

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// naTokens are cell values treated as blank in every column.
var naTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
	"#n/a": {},
	"-nan": {},
}

func isNAToken(s string) bool {
	_, ok := naTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseText trims a text cell; blanks and NA tokens are missing.
func ParseText(raw string) Opt[string] {
	s := strings.TrimSpace(raw)
	if isNAToken(s) {
		return None[string]()
	}
	return Some(s)
}

// ParseNumber coerces a numeric cell. Anything that is not a finite number is
// missing.
func ParseNumber(raw string, opt Options) Opt[float64] {
	s, ok := normalizeNumber(raw, opt)
	if !ok {
		return None[float64]()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return None[float64]()
	}
	return Some(f)
}

// ParseMoney coerces a currency cell into an exact decimal.
func ParseMoney(raw string, opt Options) Opt[decimal.Decimal] {
	s, ok := normalizeNumber(raw, opt)
	if !ok {
		return None[decimal.Decimal]()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return None[decimal.Decimal]()
	}
	return Some(d)
}

func normalizeNumber(raw string, opt Options) (string, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", ""))
	if isNAToken(s) {
		return "", false
	}
	dec := opt.DecimalSeparator
	if dec == 0 {
		dec = '.'
	}
	if thou := opt.ThousandsSeparator; thou != 0 && thou != dec {
		s = strings.ReplaceAll(s, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(s, ".") {
			return "", false
		}
		s = strings.ReplaceAll(s, string(dec), ".")
	}
	if s == "" {
		return "", false
	}
	return s, true
}

// timestampLayouts are tried in order; month-first for slash dates.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// ParseTimestamp coerces a timestamp cell. Unparseable values are missing.
func ParseTimestamp(raw string) Opt[time.Time] {
	s := strings.TrimSpace(raw)
	if isNAToken(s) {
		return None[time.Time]()
	}
	for _, l := range timestampLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return Some(t)
		}
	}
	return None[time.Time]()
}

// ParseSerialTimestamp parses a timestamp cell that may hold an Excel serial
// date (days since the workbook epoch, fraction = time of day). Text values
// fall back to ParseTimestamp.
func ParseSerialTimestamp(raw string, date1904 bool) Opt[time.Time] {
	if ts := ParseTimestamp(raw); ts.Valid {
		return ts
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return None[time.Time]()
	}
	t, err := excelize.ExcelDateToTime(f, date1904)
	if err != nil {
		return None[time.Time]()
	}
	return Some(t)
}
