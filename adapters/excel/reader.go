package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"aivaceo/adapters/coercer"
	"aivaceo/domain/dataset"
	apperrors "aivaceo/internal/errors"
)

const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string
	sheet    string
	coercer  *coercer.TypeCoercer
}

// NewDataReader creates a reader for the file at config.FilePath; the type follows the extension
func NewDataReader(config ExcelConfig) *DataReader {
	fileType, _ := FileTypeOf(config.FilePath)
	return &DataReader{
		filePath: config.FilePath,
		fileType: fileType,
		sheet:    config.Sheet,
		coercer:  coercer.NewTypeCoercer(config.CoercionConfig),
	}
}

// FileTypeOf maps a file name to csv or xlsx
func FileTypeOf(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FileTypeCSV, nil
	case ".xlsx", ".xlsm", ".xls":
		return FileTypeXLSX, nil
	}
	return "", apperrors.InvalidInput(fmt.Sprintf("unsupported file type: %q", filepath.Ext(name)))
}

// ReadDataset reads the file and coerces every column
func (r *DataReader) ReadDataset() (*dataset.Dataset, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	return data.ToDataset(r.coercer)
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if r.fileType == "" {
		_, err := FileTypeOf(r.filePath)
		return nil, err
	}
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, apperrors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", r.fileType, err)
	}
	defer file.Close()

	return readStream(r.fileType, r.sheet, file)
}

// ReadUpload reads an uploaded CSV or XLSX stream; name supplies the extension
func ReadUpload(name string, src io.Reader, config ExcelConfig) (*dataset.Dataset, error) {
	fileType, err := FileTypeOf(name)
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] Reading uploaded %s: %s", fileType, name)

	data, err := readStream(fileType, config.Sheet, src)
	if err != nil {
		return nil, err
	}
	return data.ToDataset(coercer.NewTypeCoercer(config.CoercionConfig))
}

func readStream(fileType, sheet string, src io.Reader) (*ExcelData, error) {
	switch fileType {
	case FileTypeCSV:
		return readCSVData(src)
	case FileTypeXLSX:
		return readExcelData(src, sheet)
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported file type: %s", fileType))
	}
}

// readExcelData reads one sheet, the first one when sheet is empty
func readExcelData(src io.Reader, sheet string) (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidInput("unreadable workbook"), fmt.Sprintf("failed to open Excel file: %v", err))
	}
	defer f.Close()
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.InvalidInput("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.NotFound(fmt.Sprintf("sheet %s", sheet)), fmt.Sprintf("failed to read %s", sheet))
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, apperrors.InvalidInput("Excel file must have a header row")
	}
	return processRows(rows, FileTypeXLSX)
}

// readCSVData reads CSV data into structured format; rows may be ragged
func readCSVData(src io.Reader) (*ExcelData, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidInput("malformed CSV"), fmt.Sprintf("failed to read CSV file: %v", err))
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, apperrors.InvalidInput("CSV file must have a header row")
	}
	return processRows(rows, FileTypeCSV)
}

// processRows names the columns and pads every data row to the header width.
// Blank headers become column_N and repeated ones get a .N suffix.
func processRows(rows [][]string, fileType string) (*ExcelData, error) {
	headerRow := rows[0]
	width := len(headerRow)
	for _, row := range rows[1:] {
		if len(row) > width {
			width = len(row)
		}
	}

	headers := make([]string, width)
	seen := make(map[string]int, width)
	for i := range headers {
		header := ""
		if i < len(headerRow) {
			header = strings.TrimSpace(headerRow[i])
		}
		if header == "" {
			header = "column_" + strconv.Itoa(i+1)
		}
		if n, dup := seen[header]; dup {
			// skip suffixes already taken by a literal header such as "a.1"
			base := header
			for {
				n++
				header = base + "." + strconv.Itoa(n)
				if _, taken := seen[header]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[header] = 0
		headers[i] = header
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		dataRows = append(dataRows, padded)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(fileType), len(headers), len(dataRows))

	return &ExcelData{Headers: headers, Rows: dataRows}, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ToDataset infers a kind per column and converts the cells
func (d *ExcelData) ToDataset(c *coercer.TypeCoercer) (*dataset.Dataset, error) {
	columns := make([]*dataset.Column, len(d.Headers))
	for j, header := range d.Headers {
		raw := make([]string, len(d.Rows))
		for i, row := range d.Rows {
			raw[i] = row[j]
		}
		col, analysis, err := c.BuildColumn(header, raw)
		if err != nil {
			return nil, err
		}
		log.Printf("[DataReader] Column %s -> %s (numeric %.0f%%, timestamp %.0f%%)",
			header, analysis.RecommendedKind, analysis.NumericRatio*100, analysis.TimestampRatio*100)
		columns[j] = col
	}
	return dataset.New(columns...)
}
