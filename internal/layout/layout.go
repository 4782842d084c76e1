// Package layout renders roster rows into a printable coupon workbook:
// one A4 page per employee, a header line plus a grid of uniquely coded
// coupons, with manual page breaks between employees.
package layout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/coupon"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/model"
)

var (
	// ErrEmptyRoster is returned when zero rows are supplied; an empty
	// document is never useful output, so generation fails fast.
	ErrEmptyRoster = errors.New("roster has no rows")

	// ErrRender is returned when the underlying document writer fails.
	ErrRender = errors.New("coupon sheet rendering failed")
)

const (
	sheetName = "Coupons"

	a4PaperSize = 9
	pageWidthCm = 21.0
	marginCm    = 1.0
)

// Options control page geometry and coupon presentation. The defaults mirror
// the print-tuned values: A4 with 1 cm margins and a 13x5 grid whose row
// height keeps all 13 rows on one page. Row height is configurable because
// the safe value depends on the rendering engine opening the file.
type Options struct {
	ValueLabel           string
	GridRows             int
	GridCols             int
	RowHeightCm          float64
	HeaderIncludesPrefix bool
}

// DefaultOptions returns the observed production defaults.
func DefaultOptions() Options {
	return Options{
		ValueLabel:           "₹10",
		GridRows:             13,
		GridCols:             5,
		RowHeightCm:          1.9,
		HeaderIncludesPrefix: true,
	}
}

// rowsPerPage is the worksheet rows one employee occupies: the header line
// plus the coupon grid.
func (o Options) rowsPerPage() int {
	return o.GridRows + 1
}

// pageStartRow returns the worksheet row at which page i (0-based) begins.
func (o Options) pageStartRow(page int) int {
	return page*o.rowsPerPage() + 1
}

// breakRows returns the worksheet rows before which a page break is placed
// for a document of pages pages: one break per boundary, none after the
// final page.
func (o Options) breakRows(pages int) []int {
	rows := make([]int, 0, pages-1)
	for i := 1; i < pages; i++ {
		rows = append(rows, o.pageStartRow(i))
	}
	return rows
}

// ProgressFunc observes generation progress. It is a side channel, not part
// of the rendering contract; done counts completed employee pages.
type ProgressFunc func(done, total int)

// Engine renders roster rows into a paginated coupon workbook. Engines hold
// no mutable state between calls; a single Engine may serve concurrent
// generations.
type Engine struct {
	opts    Options
	newCode func(prefix string) (string, error)
}

// NewEngine creates an Engine. Zero-valued options fall back to the
// defaults field by field, so partial configuration is safe.
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.ValueLabel == "" {
		opts.ValueLabel = def.ValueLabel
	}
	if opts.GridRows <= 0 {
		opts.GridRows = def.GridRows
	}
	if opts.GridCols <= 0 {
		opts.GridCols = def.GridCols
	}
	if opts.RowHeightCm <= 0 {
		opts.RowHeightCm = def.RowHeightCm
	}
	return &Engine{opts: opts, newCode: coupon.NewCode}
}

// Options returns the effective options after defaulting.
func (e *Engine) Options() Options {
	return e.opts
}

// Generate renders one page per roster row, in input order, and returns the
// finished workbook. Either the whole document is produced or an error is
// returned before any buffer; there is no partial success. The context is
// checked between rows so large rosters can be cancelled.
func (e *Engine) Generate(ctx context.Context, rows []model.RosterRow, periodLabel, fallbackPrefix string, progress ProgressFunc) (*bytes.Buffer, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyRoster
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, renderErr("name worksheet", err)
	}
	if err := e.setupPage(f); err != nil {
		return nil, err
	}
	styles, err := newStyleSet(f)
	if err != nil {
		return nil, renderErr("register styles", err)
	}

	for _, rowNum := range e.opts.breakRows(len(rows)) {
		if err := f.InsertPageBreak(sheetName, "A"+strconv.Itoa(rowNum)); err != nil {
			return nil, renderErr("insert page break", err)
		}
	}

	for i, row := range rows {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := e.renderPage(f, styles, i, row, periodLabel, fallbackPrefix); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(i+1, len(rows))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, renderErr("write workbook", err)
	}
	return buf, nil
}

// setupPage applies the A4 print geometry: 21.0x29.7 cm paper, 1 cm margins,
// column widths sized so the grid fills the printable width.
func (e *Engine) setupPage(f *excelize.File) error {
	size := a4PaperSize
	if err := f.SetPageLayout(sheetName, &excelize.PageLayoutOptions{Size: &size}); err != nil {
		return renderErr("set page size", err)
	}

	margin := cmToInches(marginCm)
	err := f.SetPageMargins(sheetName, &excelize.PageLayoutMarginsOptions{
		Left:   &margin,
		Right:  &margin,
		Top:    &margin,
		Bottom: &margin,
	})
	if err != nil {
		return renderErr("set page margins", err)
	}

	lastCol, err := excelize.ColumnNumberToName(e.opts.GridCols)
	if err != nil {
		return renderErr("compute last column", err)
	}
	usableCm := pageWidthCm - 2*marginCm
	width := cmToColWidth(usableCm / float64(e.opts.GridCols))
	if err := f.SetColWidth(sheetName, "A", lastCol, width); err != nil {
		return renderErr("set column widths", err)
	}
	return nil
}

func (e *Engine) renderPage(f *excelize.File, styles *styleSet, page int, row model.RosterRow, periodLabel, fallbackPrefix string) error {
	prefix := coupon.EffectivePrefix(row.PrefixOverride, fallbackPrefix)
	cur := e.opts.pageStartRow(page)

	if err := e.renderHeader(f, styles, cur, row, prefix, periodLabel); err != nil {
		return err
	}
	cur++

	for r := 0; r < e.opts.GridRows; r++ {
		if err := f.SetRowHeight(sheetName, cur, cmToPoints(e.opts.RowHeightCm)); err != nil {
			return renderErr("set row height", err)
		}
		for c := 0; c < e.opts.GridCols; c++ {
			code, err := e.newCode(prefix)
			if err != nil {
				return renderErr("generate code", err)
			}
			cp := model.Coupon{
				ValueLabel:  e.opts.ValueLabel,
				Code:        code,
				HolderName:  row.Name,
				HolderID:    row.EmployeeID,
				PeriodLabel: periodLabel,
			}
			cellName, err := excelize.CoordinatesToCellName(c+1, cur)
			if err != nil {
				return renderErr("compute cell name", err)
			}
			if err := writeCoupon(f, cellName, cp, styles); err != nil {
				return err
			}
		}
		cur++
	}
	return nil
}

// renderHeader writes the centered summary line above the grid, merged
// across the grid columns. Whether the effective prefix appears is a
// presentation choice controlled by HeaderIncludesPrefix.
func (e *Engine) renderHeader(f *excelize.File, styles *styleSet, rowNum int, row model.RosterRow, prefix, periodLabel string) error {
	var text string
	if e.opts.HeaderIncludesPrefix {
		display := coupon.CleanPrefix(prefix)
		if display == "" {
			display = "NONE"
		}
		text = fmt.Sprintf("Name: %s (%s)  |  Prefix: %s  |  Month: %s", row.Name, row.EmployeeID, display, periodLabel)
	} else {
		text = fmt.Sprintf("Name: %s (%s)  |  Month: %s", row.Name, row.EmployeeID, periodLabel)
	}

	start := "A" + strconv.Itoa(rowNum)
	lastCol, err := excelize.ColumnNumberToName(e.opts.GridCols)
	if err != nil {
		return renderErr("compute last column", err)
	}
	end := lastCol + strconv.Itoa(rowNum)

	if err := f.MergeCell(sheetName, start, end); err != nil {
		return renderErr("merge header cells", err)
	}
	if err := f.SetCellValue(sheetName, start, text); err != nil {
		return renderErr("write header", err)
	}
	if err := f.SetCellStyle(sheetName, start, end, styles.header); err != nil {
		return renderErr("style header", err)
	}
	return nil
}

// writeCoupon fills one grid cell with the four coupon lines: value label,
// code, holder, period. The code line is monospaced so handwritten
// verification against a redemption list is unambiguous.
func writeCoupon(f *excelize.File, cellName string, cp model.Coupon, styles *styleSet) error {
	runs := []excelize.RichTextRun{
		{Text: cp.ValueLabel + " Coupon", Font: &excelize.Font{Bold: true, Size: 9, Color: "006400"}},
		{Text: "\n" + cp.Code, Font: &excelize.Font{Bold: true, Size: 10, Family: "Courier New"}},
		{Text: "\n" + cp.HolderName + " (" + cp.HolderID + ")", Font: &excelize.Font{Size: 7}},
		{Text: "\n" + cp.PeriodLabel, Font: &excelize.Font{Size: 6, Italic: true}},
	}
	if err := f.SetCellRichText(sheetName, cellName, runs); err != nil {
		return renderErr("write coupon cell", err)
	}
	if err := f.SetCellStyle(sheetName, cellName, cellName, styles.coupon); err != nil {
		return renderErr("style coupon cell", err)
	}
	return nil
}

// styleSet holds the registered style IDs reused across every page.
type styleSet struct {
	header int
	coupon int
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}
	coupon, err := f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, err
	}
	return &styleSet{header: header, coupon: coupon}, nil
}

func renderErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrRender, op, err)
}

func cmToInches(cm float64) float64 {
	return cm / 2.54
}

func cmToPoints(cm float64) float64 {
	return cm * 72 / 2.54
}

// Excel column width is measured in default-font character units, roughly
// 0.21 cm each.
func cmToColWidth(cm float64) float64 {
	return cm / 0.21
}
