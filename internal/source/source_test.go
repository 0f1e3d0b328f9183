package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadCSV_NormalizesRows(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sales.csv")
	content := "\ufeffTransaction ID, Item ,Quantity\n" +
		"TXN_1,Coffee,2\n" +
		"\n" +
		"TXN_2,Cake\n" +
		"TXN_3,Tea,1,extra\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := Read(p, Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := strings.Join(tbl.Header, "|"); got != "Transaction ID|Item|Quantity" {
		t.Fatalf("header = %q", got)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(tbl.Rows))
	}
	if tbl.Rows[1][2] != "" {
		t.Fatalf("short row not padded: %q", tbl.Rows[1])
	}
	if len(tbl.Rows[2]) != 3 {
		t.Fatalf("long row not truncated: %q", tbl.Rows[2])
	}
	if tbl.Name != "sales.csv" {
		t.Fatalf("name = %q", tbl.Name)
	}
}

func TestReadTSV_SniffsDelimiter(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sales.tsv")
	if err := os.WriteFile(p, []byte("Item\tQuantity\nCoffee\t2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := Read(p, Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(tbl.Header) != 2 || tbl.Rows[0][1] != "2" {
		t.Fatalf("unexpected table: %+v", tbl)
	}
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(p, []byte("Item,Quantity\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := Read(p, Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(tbl.Header) != 2 || len(tbl.Rows) != 0 {
		t.Fatalf("unexpected table: %+v", tbl)
	}
}

func TestRead_Unsupported(t *testing.T) {
	_, err := Read("notes.docx", Options{})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestReadXLSX_SheetSelection(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sales.xlsx")
	f := excelize.NewFile()
	if _, err := f.NewSheet("Sales"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	rows := [][]any{
		{"Item", "Quantity"},
		{"Coffee", "2"},
		{"Juice"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sales", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = f.Close()

	tbl, err := Read(p, Options{Sheet: "sales"})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[1][1] != "" || tbl.Rows[0][0] != "Coffee" {
		t.Fatalf("unexpected rows: %q", tbl.Rows)
	}
	if !tbl.SerialDates || tbl.Date1904 {
		t.Fatalf("expected 1900-epoch serial dates, got serial=%v 1904=%v", tbl.SerialDates, tbl.Date1904)
	}

	if _, err := Read(p, Options{Sheet: "Missing"}); err == nil || !strings.Contains(err.Error(), "Available sheets") {
		t.Fatalf("expected sheet-not-found error, got %v", err)
	}
	if _, err := Read(p, Options{SheetIndex: 9}); err == nil {
		t.Fatalf("expected out of range error")
	}
}
