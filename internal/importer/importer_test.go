package importer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, lines [][]interface{}) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &line); err != nil {
			t.Fatal(err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Could not serialize workbook: %s", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestReadXLSX(t *testing.T) {
	book := buildWorkbook(t, [][]interface{}{
		{"EMPRESA", "CONTRATO No.", "OBRA", "ENTIDAD CONTRATANTE", "FECHA FINALIZACIÓN", "VALOR ACTUAL", "CATEGORÍA", "ÁREA DE LA INGENIERÍA CIVIL"},
		{"Consultores Viales SAS", "CT-001", "Interventoría malla vial", "INVIAS", "15/03/2021", "$1,250,000,000", "Interventoría", "Vías"},
		{"Consultores Viales SAS", "CT-002", "Supervisión de puente", "Gobernación", "2020-06-30", "800000000", "Obra", "Puentes"},
	})

	rows, err := ReadXLSX(book)
	if err != nil {
		t.Fatalf("Could not read workbook: %s", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Number != 2 {
		t.Errorf("First data row should carry sheet row 2, got %d", first.Number)
	}
	if first.CompanyName != "Consultores Viales SAS" || first.ContractNumber != "CT-001" {
		t.Errorf("Unexpected company/contract: %q / %q", first.CompanyName, first.ContractNumber)
	}
	if first.ProjectDescription != "Interventoría malla vial" {
		t.Errorf("Unexpected description: %q", first.ProjectDescription)
	}
	if first.Amount == nil || *first.Amount != 1_250_000_000 {
		t.Errorf("Unexpected amount: %v", first.Amount)
	}
	if first.CompletionDate == nil || first.CompletionDate.Year() != 2021 {
		t.Errorf("Unexpected completion date: %v", first.CompletionDate)
	}

	second := rows[1]
	if second.CompletionDate == nil || !second.CompletionDate.Equal(time.Date(2020, 6, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected second completion date: %v", second.CompletionDate)
	}
}

func TestReadXLSXHeaderBelowTitleBlock(t *testing.T) {
	book := buildWorkbook(t, [][]interface{}{
		{"REGISTRO DE EXPERIENCIA"},
		{},
		{"Empresa", "Contrato", "Obra", "Entidad", "Fecha", "Valor"},
		{"ACME", "C-1", "Mantenimiento vial", "Municipio", "01/02/2019", "5000000"},
	})

	rows, err := ReadXLSX(book)
	if err != nil {
		t.Fatalf("Could not read workbook: %s", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].Number != 4 {
		t.Errorf("Expected sheet row 4, got %d", rows[0].Number)
	}
	if rows[0].ProjectDescription != "Mantenimiento vial" {
		t.Errorf("Unexpected description: %q", rows[0].ProjectDescription)
	}
}

func TestReadXLSXSkipsBlankLines(t *testing.T) {
	book := buildWorkbook(t, [][]interface{}{
		{"EMPRESA", "OBRA"},
		{"ACME", "Obra uno"},
		{"", ""},
		{"ACME", "Obra dos"},
	})

	rows, err := ReadXLSX(book)
	if err != nil {
		t.Fatalf("Could not read workbook: %s", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected blank line to be skipped, got %d rows", len(rows))
	}
	if rows[1].Number != 4 {
		t.Errorf("Row numbering should survive skipped lines, got %d", rows[1].Number)
	}
}

func TestReadXLSXMissingDescriptionColumn(t *testing.T) {
	book := buildWorkbook(t, [][]interface{}{
		{"EMPRESA", "VALOR ACTUAL"},
		{"ACME", "100"},
	})

	_, err := ReadXLSX(book)
	if err == nil {
		t.Fatal("Expected error for workbook without description column")
	}
	if !strings.Contains(err.Error(), "OBRA") {
		t.Errorf("Error should name the missing column, got: %s", err)
	}
}

func TestReadXLSXGarbageInput(t *testing.T) {
	_, err := ReadXLSX(bytes.NewReader([]byte("this is not a workbook")))
	if err == nil {
		t.Fatal("Expected error for non-xlsx input")
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want *time.Time
	}{
		{"", nil},
		{"not a date", nil},
		{"2021-03-15", timeOf(2021, 3, 15)},
		{"15/03/2021", timeOf(2021, 3, 15)},
		{"44270", timeOf(2021, 3, 15)},
	}

	for _, tc := range cases {
		got := ParseDate(tc.in)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("ParseDate(%q) = %v, want nil", tc.in, got)
		case tc.want != nil && (got == nil || !got.Equal(*tc.want)):
			t.Errorf("ParseDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"", nil},
		{"n/a", nil},
		{"-100", nil},
		{"1250000000", amountOf(1_250_000_000)},
		{"$1,250,000,000", amountOf(1_250_000_000)},
		{"$ 500,000.50", amountOf(500_000.50)},
	}

	for _, tc := range cases {
		got := ParseAmount(tc.in)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("ParseAmount(%q) = %v, want nil", tc.in, *got)
		case tc.want != nil && (got == nil || *got != *tc.want):
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.in, got, *tc.want)
		}
	}
}

func timeOf(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func amountOf(v float64) *float64 { return &v }
