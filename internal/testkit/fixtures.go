package testkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"

	"aivaceo/domain/dataset"
)

// WriteXLSXFile writes ds to a single-sheet workbook; missing cells stay empty
func WriteXLSXFile(path, sheet string, ds *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, 0, ds.NumColumns())
	for _, name := range ds.ColumnNames() {
		header = append(header, name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	columns := ds.Columns()
	for i := 0; i < ds.Rows(); i++ {
		row := make([]interface{}, len(columns))
		for j, col := range columns {
			if col.Kind() == dataset.KindNumeric {
				if v, ok := col.Float(i); ok {
					row[j] = v
					continue
				}
			}
			row[j] = col.Format(i)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

var sqlTypes = map[dataset.Kind]string{
	dataset.KindNumeric:  "DOUBLE PRECISION",
	dataset.KindText:     "TEXT",
	dataset.KindDatetime: "TIMESTAMP",
}

// LoadTable creates table and inserts every row of ds in one transaction
func LoadTable(ctx context.Context, db *sqlx.DB, table string, ds *dataset.Dataset) error {
	columns := ds.Columns()
	defs := make([]string, len(columns))
	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		names[i] = quoteIdent(col.Name())
		defs[i] = names[i] + " " + sqlTypes[col.Kind()]
		marks[i] = "?"
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	insert := tx.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(names, ", "), strings.Join(marks, ", ")))
	args := make([]interface{}, len(columns))
	for i := 0; i < ds.Rows(); i++ {
		for j, col := range columns {
			args[j] = col.Cell(i)
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
