package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const salesHeader = "Transaction ID,Item,Quantity,Price Per Unit,Total Spent,Payment Method,Location,Transaction Date"

// fiveRowCSV has one unparseable timestamp (TXN_4) and one non-numeric
// total (TXN_3).
var fiveRowCSV = []string{
	salesHeader,
	"TXN_1,Coffee,2,2.0,4.0,Cash,In-store,2023-01-01",
	"TXN_2,Cake,1,3.0,3.0,Credit Card,Takeaway,2023-01-02",
	"TXN_3,Tea,1,1.5,ERROR,Cash,In-store,2023-01-02",
	"TXN_4,Coffee,1,2.0,2.0,Digital Wallet,Takeaway,ERROR",
	"TXN_5,Sandwich,1,4.0,4.0,Cash,In-store,2023-01-03",
}

func writeCSV(t *testing.T, lines []string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return p
}

func money(s string) Opt[decimal.Decimal] {
	return Some(decimal.RequireFromString(s))
}

func at(s string) Opt[time.Time] {
	ts := ParseTimestamp(s)
	if !ts.Valid {
		panic("bad test timestamp " + s)
	}
	return ts
}

func rec(ts, item, total, method, location string) Record {
	r := Record{Timestamp: at(ts), Item: ParseText(item), PaymentMethod: ParseText(method), Location: ParseText(location)}
	if total != "" {
		r.TotalSpent = money(total)
	}
	return r
}
