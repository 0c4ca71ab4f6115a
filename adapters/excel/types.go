package excel

// ExcelData is a sheet as read from disk: a header row and rectangular string rows
type ExcelData struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows, padded to len(Headers)
}
