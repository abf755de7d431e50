package models

// ImportResult sums up a spreadsheet import. Errors carry one entry per
// rejected row, naming the sheet row; valid rows are stored regardless.
type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}
