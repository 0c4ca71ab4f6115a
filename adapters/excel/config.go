package excel

import (
	"aivaceo/adapters/coercer"
)

// ExcelConfig holds configuration for a spreadsheet data source
type ExcelConfig struct {
	FilePath       string                 `json:"file_path" yaml:"file_path"`
	Sheet          string                 `json:"sheet" yaml:"sheet"` // empty selects the first sheet
	CoercionConfig coercer.CoercionConfig `json:"coercion_config" yaml:"coercion_config"`
}

// DefaultExcelConfig returns sensible defaults for spreadsheet processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
