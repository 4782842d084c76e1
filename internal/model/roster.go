package model

// RosterRow is one employee entry read from the input table.
// Rows are value types: read once, rendered once, never stored.
type RosterRow struct {
	Name           string
	EmployeeID     string
	PrefixOverride string // raw cell value; blank or null-like means "use the fallback prefix"
}

// Coupon is a single redeemable voucher cell on an employee's sheet.
type Coupon struct {
	ValueLabel  string
	Code        string
	HolderName  string
	HolderID    string
	PeriodLabel string
}

// GeneratedDocument is a finished coupon workbook ready for download.
type GeneratedDocument struct {
	Filename string
	Content  []byte
}

// GenerateSheetRequest is the DTO for generating coupon sheets from a
// shareable spreadsheet link.
type GenerateSheetRequest struct {
	SheetURL       string `json:"sheet_url" validate:"required,notblank,url"`
	PeriodLabel    string `json:"period_label" validate:"required,notblank,max=64"`
	FallbackPrefix string `json:"fallback_prefix" validate:"max=16"`
}

// GenerateUploadRequest carries the form fields of a roster file upload.
// The roster file itself travels as a multipart part next to these fields.
type GenerateUploadRequest struct {
	PeriodLabel    string `form:"period_label" validate:"required,notblank,max=64"`
	FallbackPrefix string `form:"fallback_prefix" validate:"max=16"`
}
