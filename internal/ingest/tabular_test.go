package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"DepreciationRecon/internal/recon"

	"github.com/xuri/excelize/v2"
)

func latin1(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, byte(r))
	}
	return out
}

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestReadGridDelimitedLatin1(t *testing.T) {
	data := latin1("Relatório SIAFI\nNat Desp,Descrição,Saldo\n449052,\"Máquinas, aparelhos\",\"1.234,56\"\n339142,Veículos,100.5\n")
	grid, err := NewGridReader(',').ReadGrid(Source{Name: "153289_SIAFI.csv", Data: data})
	if err != nil {
		t.Fatalf("ReadGrid: %v", err)
	}
	if len(grid) != 4 {
		t.Fatalf("got %d rows, want 4", len(grid))
	}
	if got := grid[0][0].Text; got != "Relatório SIAFI" {
		t.Errorf("decoded title = %q", got)
	}
	if c := grid[2][0]; c.Kind != recon.CellNumber || c.Num != 449052 {
		t.Errorf("nature cell = %+v, want number", c)
	}
	if c := grid[2][1]; c.Text != "Máquinas, aparelhos" {
		t.Errorf("quoted cell = %+v", c)
	}
	if c := grid[2][2]; c.Kind != recon.CellText || c.Text != "1.234,56" {
		t.Errorf("br amount = %+v, want text", c)
	}
	if c := grid[3][2]; c.Kind != recon.CellNumber || c.Num != 100.5 {
		t.Errorf("dot amount = %+v, want number", c)
	}

	m, err := recon.ExtractLedgerCategories(grid)
	if err != nil {
		t.Fatalf("ExtractLedgerCategories: %v", err)
	}
	if !m[52].Equal(recon.ParseReportAmount("1.234,56")) {
		t.Errorf("category 52 = %s", m[52])
	}
}

func TestReadGridSemicolonDelimiter(t *testing.T) {
	data := []byte("Nat Desp;Saldo\n449052;10,00\n")
	grid, err := NewGridReader(';').ReadGrid(Source{Name: "1.csv", Data: data})
	if err != nil {
		t.Fatal(err)
	}
	if len(grid[1]) != 2 || grid[1][1].Text != "10,00" {
		t.Errorf("row = %+v", grid[1])
	}
}

func TestReadGridWorkbook(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Tesouro Gerencial"},
		{"Nat Desp", "Conta", "Saldo - R$"},
		{449052, "123110300", -1500.25},
		{"339142", "123110300", "2.000,00"},
	})

	grid, err := NewGridReader(',').ReadGrid(Source{Name: "153289_SIAFI.xlsx", Data: data})
	if err != nil {
		t.Fatalf("ReadGrid: %v", err)
	}
	if len(grid) != 4 {
		t.Fatalf("got %d rows, want 4", len(grid))
	}
	if c := grid[2][0]; c.Kind != recon.CellNumber || c.Num != 449052 {
		t.Errorf("numeric nature = %+v", c)
	}
	if c := grid[2][2]; c.Kind != recon.CellNumber || c.Num != -1500.25 {
		t.Errorf("numeric balance = %+v", c)
	}
	if c := grid[3][0]; c.Kind != recon.CellText || c.Text != "339142" {
		t.Errorf("string nature = %+v, want text", c)
	}

	m, err := recon.ExtractLedgerCategories(grid)
	if err != nil {
		t.Fatal(err)
	}
	if m[52].String() != "1500.25" || m[42].String() != "2000" {
		t.Errorf("categories = %v", m)
	}
}

func TestReadGridWorkbookNamedAsCSV(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{{"Nat Desp", "Saldo"}, {449052, 1}})
	grid, err := NewGridReader(',').ReadGrid(Source{Name: "1_SIAFI.csv", Data: data})
	if err != nil {
		t.Fatalf("ReadGrid: %v", err)
	}
	if grid[0][0].Text != "Nat Desp" {
		t.Errorf("first cell = %+v", grid[0][0])
	}
}

func TestReadGridUnreadable(t *testing.T) {
	src := Source{Name: "1.xlsx", Data: []byte{0x00, 0x01, 0x02, 0x03, 0xff}}
	_, err := NewGridReader(',').ReadGrid(src)
	if !errors.Is(err, ErrUnsupportedTable) {
		t.Fatalf("err = %v, want ErrUnsupportedTable", err)
	}
}

func TestReadGridXLSNameFallsBack(t *testing.T) {
	data := []byte("Nat Desp,Saldo\n449052,10.5\n")
	grid, err := NewGridReader(',').ReadGrid(Source{Name: "153289_SIAFI.xls", Data: data})
	if err != nil {
		t.Fatalf("ReadGrid: %v", err)
	}
	if len(grid) != 2 || grid[1][1].Kind != recon.CellNumber || grid[1][1].Num != 10.5 {
		t.Errorf("grid = %+v", grid)
	}
}

func TestReadGridXLSUnreadable(t *testing.T) {
	// An OLE2 signature followed by a truncated header.
	data := append([]byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}, bytes.Repeat([]byte{0}, 24)...)
	_, err := NewGridReader(',').ReadGrid(Source{Name: "1.xls", Data: data})
	if !errors.Is(err, ErrUnsupportedTable) {
		t.Fatalf("err = %v, want ErrUnsupportedTable", err)
	}
	if !strings.Contains(err.Error(), "xls:") {
		t.Errorf("legacy attempt missing from %v", err)
	}
}

func TestXLSCell(t *testing.T) {
	tests := []struct {
		in   string
		kind recon.CellKind
		ok   bool
	}{
		{"449052", recon.CellNumber, true},
		{"-1500.25", recon.CellNumber, true},
		{"Nat Desp", recon.CellText, true},
		{"", recon.CellEmpty, true},
		{"FormulaCol", recon.CellEmpty, false},
		{"2024-01-31T00:00:00Z", recon.CellEmpty, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := xlsCell(tt.in)
			if got.Kind != tt.kind || ok != tt.ok {
				t.Errorf("xlsCell(%q) = %+v, %v; want kind %v, %v", tt.in, got, ok, tt.kind, tt.ok)
			}
		})
	}
}

func TestInferCell(t *testing.T) {
	tests := []struct {
		in   string
		kind recon.CellKind
	}{
		{"", recon.CellEmpty},
		{"  ", recon.CellEmpty},
		{"NaN", recon.CellEmpty},
		{"12", recon.CellNumber},
		{"-3.5", recon.CellNumber},
		{"1.234,56", recon.CellText},
		{"0x1p-2", recon.CellText},
		{"Inf", recon.CellText},
		{"Nat Desp", recon.CellText},
	}
	for _, tt := range tests {
		if got := inferCell(tt.in); got.Kind != tt.kind {
			t.Errorf("inferCell(%q) kind = %v, want %v", tt.in, got.Kind, tt.kind)
		}
	}
}

func TestSourceOpenRewinds(t *testing.T) {
	src := Source{Name: "a.csv", Data: []byte("abc")}
	r1 := src.Open()
	buf := make([]byte, 3)
	r1.Read(buf)
	r2 := src.Open()
	got := new(bytes.Buffer)
	got.ReadFrom(r2)
	if got.String() != "abc" {
		t.Errorf("second open read %q", got.String())
	}
}

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"153289.pdf":        KindReport,
		"153289.PDF":        KindReport,
		"153289_SIAFI.xlsx": KindLedger,
		"1.xls":             KindLedger,
		"1.csv":             KindLedger,
		"notes.txt":         KindUnknown,
	}
	for name, want := range tests {
		if got := KindOf(name); got != want {
			t.Errorf("KindOf(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDocumentText(t *testing.T) {
	got := DocumentText([]string{"page one", "page two"})
	if got != "page one\npage two\n" {
		t.Errorf("DocumentText = %q", got)
	}
}

func TestPDFTextExtractorRejectsGarbage(t *testing.T) {
	_, err := NewPDFTextExtractor().PageTexts(Source{Name: "1.pdf", Data: []byte("not a pdf")})
	if err == nil {
		t.Fatal("expected error for non-pdf input")
	}
}
