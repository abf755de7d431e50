// Package importer decodes company-experience spreadsheets into clean
// rows. It is the producer side of the import boundary: validation,
// keyword derivation and persistence of the rows happen in the service.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"licitia/internal/engine"

	"github.com/xuri/excelize/v2"
)

// Row is one decoded spreadsheet row. Number is the 1-based sheet row it
// came from, kept for per-row error reporting.
type Row struct {
	Number             int
	CompanyName        string
	ContractNumber     string
	ProjectDescription string
	ContractingEntity  string
	CompletionDate     *time.Time
	Amount             *float64
	Category           string
	EngineeringArea    string
}

// Canonical column keys of the expected spreadsheet layout.
const (
	colCompany     = "EMPRESA"
	colContract    = "CONTRATO No."
	colDescription = "OBRA"
	colEntity      = "ENTIDAD CONTRATANTE"
	colDate        = "FECHA FINALIZACIÓN"
	colAmount      = "VALOR ACTUAL"
	colCategory    = "CATEGORÍA"
	colArea        = "ÁREA DE LA INGENIERÍA CIVIL"
)

// headerAliases maps normalized header cell text to canonical columns.
// Matching is accent- and case-insensitive.
var headerAliases = map[string]string{
	"empresa":                     colCompany,
	"contrato no":                 colContract,
	"contrato":                    colContract,
	"obra":                        colDescription,
	"obras":                       colDescription,
	"descripcion":                 colDescription,
	"proyecto":                    colDescription,
	"entidad contratante":         colEntity,
	"entidad":                     colEntity,
	"fecha finalizacion":          colDate,
	"fecha":                       colDate,
	"valor actual":                colAmount,
	"valor":                       colAmount,
	"monto":                       colAmount,
	"categoria":                   colCategory,
	"area de la ingenieria civil": colArea,
	"area":                        colArea,
}

// ReadXLSX decodes the first sheet of an xlsx workbook. The header row
// is searched within the first five rows, since exported spreadsheets
// often carry a title block above the real headers.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("importer.ReadXLSX: could not open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("importer.ReadXLSX: workbook has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("importer.ReadXLSX: could not read sheet %q: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("importer.ReadXLSX: sheet %q is empty", sheets[0])
	}

	headerIdx, columns := findHeader(cells)
	if _, ok := columns[colDescription]; !ok {
		return nil, fmt.Errorf("importer.ReadXLSX: required column %s not found, available: %s",
			colDescription, strings.Join(cells[headerIdx], ", "))
	}

	rows := make([]Row, 0, len(cells)-headerIdx-1)
	for i := headerIdx + 1; i < len(cells); i++ {
		line := cells[i]
		if blankLine(line) {
			continue
		}
		row := Row{
			Number:             i + 1,
			CompanyName:        cellAt(line, columns, colCompany),
			ContractNumber:     cellAt(line, columns, colContract),
			ProjectDescription: cellAt(line, columns, colDescription),
			ContractingEntity:  cellAt(line, columns, colEntity),
			CompletionDate:     ParseDate(cellAt(line, columns, colDate)),
			Amount:             ParseAmount(cellAt(line, columns, colAmount)),
			Category:           cellAt(line, columns, colCategory),
			EngineeringArea:    cellAt(line, columns, colArea),
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// findHeader locates the header row and maps canonical columns to cell
// indexes. When no row in the first five looks like a header, the first
// row is used.
func findHeader(cells [][]string) (int, map[string]int) {
	probe := len(cells)
	if probe > 5 {
		probe = 5
	}

	for i := 0; i < probe; i++ {
		columns := mapColumns(cells[i])
		if len(columns) > 0 {
			return i, columns
		}
	}
	return 0, mapColumns(cells[0])
}

func mapColumns(header []string) map[string]int {
	columns := make(map[string]int)
	for idx, cell := range header {
		name := engine.Normalize(cell)
		if name == "" {
			continue
		}
		if canonical, ok := headerAliases[name]; ok {
			if _, taken := columns[canonical]; !taken {
				columns[canonical] = idx
			}
			continue
		}
		// OBRA is the one column the import cannot live without, so a
		// partial match is accepted for it.
		if strings.Contains(name, "obra") {
			if _, taken := columns[colDescription]; !taken {
				columns[colDescription] = idx
			}
		}
	}
	return columns
}

func cellAt(line []string, columns map[string]int, key string) string {
	idx, ok := columns[key]
	if !ok || idx >= len(line) {
		return ""
	}
	return strings.TrimSpace(line[idx])
}

func blankLine(line []string) bool {
	for _, cell := range line {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var dateFormats = []string{
	"01/02/2006",
	"02/01/2006",
	"2006-01-02",
	"01-02-2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
}

// excelEpoch is the zero day of Excel's 1900 date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate accepts the date shapes seen in experience spreadsheets:
// common day/month orderings and raw Excel serial numbers. Unparsable
// input yields nil, never an error; a bad date must not sink the row.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return &t
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t := excelEpoch.AddDate(0, 0, int(serial))
		return &t
	}

	return nil
}

// ParseAmount strips currency symbols and thousand separators before
// parsing. Unparsable or negative input yields nil.
func ParseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	s = strings.NewReplacer("$", "", ",", "", " ", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
