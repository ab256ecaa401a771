package workbook

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParse_CSV(t *testing.T) {
	input := "\ufefftitulo,preco,quartos\n" +
		"Apto Pinheiros,2000,2\n" +
		",,\n" +
		"Casa Vila, \"500.000\",3\n"

	rows, err := Parse(strings.NewReader(input), "imoveis.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Parse() returned %d rows, want 2", len(rows))
	}
	if rows[0].Line != 2 || rows[1].Line != 4 {
		t.Errorf("lines = %d, %d, want 2, 4", rows[0].Line, rows[1].Line)
	}
	if got := rows[0].Get("titulo"); got != "Apto Pinheiros" {
		t.Errorf("titulo = %q, want %q (BOM should be stripped)", got, "Apto Pinheiros")
	}
	if got := rows[1].Get("preco"); got != "500.000" {
		t.Errorf("preco = %q, want %q", got, "500.000")
	}
}

func TestParse_CSVSemicolon(t *testing.T) {
	input := "Título;Preço\nApto;2.000,50\n"
	rows, err := Parse(strings.NewReader(input), "x.CSV")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Get("Preço") != "2.000,50" {
		t.Errorf("Parse() = %+v", rows)
	}
}

func TestParse_ShortRecordFillsBlank(t *testing.T) {
	rows, err := Parse(strings.NewReader("a,b,c\n1\n"), "x.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if v, ok := rows[0].Values["c"]; !ok || v != "" {
		t.Errorf("missing trailing cell should map to empty string, got %q (present=%v)", v, ok)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, input := range []string{"", "\n\n", "titulo,preco\n"} {
		rows, err := Parse(strings.NewReader(input), "x.csv")
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", input, err)
		}
		if len(rows) != 0 {
			t.Errorf("Parse(%q) returned %d rows, want 0", input, len(rows))
		}
	}
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse(strings.NewReader("x"), "notes.txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Parse(.txt) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParse_TooLarge(t *testing.T) {
	data := bytes.Repeat([]byte("a"), MaxUploadSize+1)
	_, err := Parse(bytes.NewReader(data), "big.csv")
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Parse() error = %v, want ErrTooLarge", err)
	}
}

func TestParse_TooManyRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i <= MaxRows; i++ {
		b.WriteString("1\n")
	}
	_, err := Parse(strings.NewReader(b.String()), "many.csv")
	if !errors.Is(err, ErrTooManyRows) {
		t.Errorf("Parse() error = %v, want ErrTooManyRows", err)
	}
}

func TestParse_InvalidXLSX(t *testing.T) {
	if _, err := Parse(strings.NewReader("not a zip"), "broken.xlsx"); err == nil {
		t.Error("Parse(broken.xlsx) should fail")
	}
}

func sampleTable() Table {
	return Table{
		Sheet: "Imóveis",
		Columns: []Column{
			{Header: "ID", Width: 28},
			{Header: "Título", Width: 40},
			{Header: "Quartos", Width: 10},
		},
		Rows: [][]any{
			{"a1", "Apto, Pinheiros", 2},
			{"b2", "Casa", 3},
		},
	}
}

func TestRender_XLSXRoundTrip(t *testing.T) {
	data, err := Render(sampleTable(), XLSX)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	rows, err := Parse(bytes.NewReader(data), "export.xlsx")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("round trip returned %d rows, want 2", len(rows))
	}
	if rows[0].Get("Título") != "Apto, Pinheiros" || rows[1].Get("Quartos") != "3" {
		t.Errorf("round trip rows = %+v", rows)
	}
}

func TestRender_CSV(t *testing.T) {
	data, err := Render(sampleTable(), CSV)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	s := string(data)
	if !strings.HasPrefix(s, "\ufeff") {
		t.Error("csv output should start with a UTF-8 BOM")
	}
	want := "\ufeffID,Título,Quartos\r\na1,\"Apto, Pinheiros\",2\r\nb2,Casa,3\r\n"
	if s != want {
		t.Errorf("Render(CSV) = %q, want %q", s, want)
	}
}

func TestRender_Unsupported(t *testing.T) {
	if _, err := Render(sampleTable(), Format("pdf")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Render(pdf) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFormatFilename(t *testing.T) {
	tests := []struct {
		f    Format
		name string
		want string
	}{
		{XLSX, "imoveis", "imoveis.xlsx"},
		{XLSX, "imoveis.xlsx", "imoveis.xlsx"},
		{CSV, "imoveis.xlsx", "imoveis.csv"},
		{CSV, "", "export.csv"},
		{XLSX, "../../etc/relatorio", "relatorio.xlsx"},
		{XLSX, "relatorio.v2", "relatorio.v2.xlsx"},
	}
	for _, tt := range tests {
		if got := tt.f.Filename(tt.name); got != tt.want {
			t.Errorf("%s.Filename(%q) = %q, want %q", tt.f, tt.name, got, tt.want)
		}
	}
}

func TestParse_HeadersInSheetOrder(t *testing.T) {
	rows, err := Parse(strings.NewReader("titulo,,Title,preco\nA,x,B,1\n"), "x.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []string{"titulo", "Title", "preco"}
	got := rows[0].Headers
	if len(got) != len(want) {
		t.Fatalf("Headers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Headers[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
