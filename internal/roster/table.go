package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/model"
)

// Table is a rectangular roster with named columns. All cells are plain
// strings; ragged rows are tolerated and missing cells read as "".
type Table struct {
	Columns []string
	Rows    [][]string
}

// ParseCSV reads a comma-separated roster export. The first record is the
// header. An empty input yields an empty table, which the resolver then
// rejects for having too few columns.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rosters exported by hand are often ragged

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return tableFromRecords(records), nil
}

// ParseXLSX reads the first worksheet of an Excel roster.
func ParseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no worksheet found")
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read worksheet: %w", err)
	}
	return tableFromRecords(records), nil
}

func tableFromRecords(records [][]string) *Table {
	if len(records) == 0 {
		return &Table{}
	}
	return &Table{Columns: records[0], Rows: records[1:]}
}

// RosterRows projects the table through resolved columns. Missing cells are
// coerced to empty strings rather than failing the row.
func (t *Table) RosterRows(cols ResolvedColumns) []model.RosterRow {
	rows := make([]model.RosterRow, 0, len(t.Rows))
	for _, rec := range t.Rows {
		row := model.RosterRow{
			Name:       cell(rec, cols.NameIdx),
			EmployeeID: cell(rec, cols.IDIdx),
		}
		if cols.HasPrefix() {
			row.PrefixOverride = cell(rec, cols.PrefixIdx)
		}
		rows = append(rows, row)
	}
	return rows
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
