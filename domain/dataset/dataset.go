package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"aivaceo/domain/core"
	apperrors "aivaceo/internal/errors"
)

// Dataset is a read-only rectangular table of equally long, uniquely named columns
type Dataset struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New assembles a dataset, rejecting ragged or ambiguously named columns
func New(columns ...*Column) (*Dataset, error) {
	ds := &Dataset{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col == nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("column %d is nil", i))
		}
		if strings.TrimSpace(col.Name()) == "" {
			return nil, apperrors.InvalidInput(fmt.Sprintf("column %d has an empty name", i))
		}
		if _, dup := ds.index[col.Name()]; dup {
			return nil, apperrors.InvalidInput(fmt.Sprintf("duplicate column name '%s'", col.Name()))
		}
		if i == 0 {
			ds.rows = col.Len()
		} else if col.Len() != ds.rows {
			return nil, apperrors.InvalidInput(fmt.Sprintf("column '%s' has %d rows, expected %d", col.Name(), col.Len(), ds.rows))
		}
		ds.index[col.Name()] = i
		ds.columns = append(ds.columns, col)
	}
	return ds, nil
}

// MustNew is New for fixtures whose shape is known to be valid
func MustNew(columns ...*Column) *Dataset {
	ds, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return ds
}

// Rows returns the number of rows
func (d *Dataset) Rows() int { return d.rows }

// NumColumns returns the number of columns
func (d *Dataset) NumColumns() int { return len(d.columns) }

// IsEmpty reports whether the dataset has no rows or no columns
func (d *Dataset) IsEmpty() bool { return d.rows == 0 || len(d.columns) == 0 }

// TotalCells returns rows × columns
func (d *Dataset) TotalCells() int { return d.rows * len(d.columns) }

// ColumnNames returns the column names in order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name()
	}
	return names
}

// Column looks a column up by name
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.columns[i], true
}

// Columns returns the columns in order
func (d *Dataset) Columns() []*Column {
	out := make([]*Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// Kinds maps each column name to its kind
func (d *Dataset) Kinds() map[string]Kind {
	kinds := make(map[string]Kind, len(d.columns))
	for _, c := range d.columns {
		kinds[c.Name()] = c.Kind()
	}
	return kinds
}

// ColumnsOfKind returns, in order, the names of the columns of kind k
func (d *Dataset) ColumnsOfKind(k Kind) []string {
	var names []string
	for _, c := range d.columns {
		if c.Kind() == k {
			names = append(names, c.Name())
		}
	}
	return names
}

// NullCount returns the number of missing cells across all columns
func (d *Dataset) NullCount() int {
	n := 0
	for _, c := range d.columns {
		n += c.NullCount()
	}
	return n
}

// RowKey returns a composite identity for row i. Two rows share a key when
// every cell is equal, with missing equal to missing.
func (d *Dataset) RowKey(i int) string {
	var sb strings.Builder
	for _, c := range d.columns {
		k := c.Key(i)
		sb.WriteString(strconv.Itoa(len(k)))
		sb.WriteByte(':')
		sb.WriteString(k)
		sb.WriteByte(0x1f)
	}
	return sb.String()
}

// RowHasMissing reports whether any cell of row i is missing
func (d *Dataset) RowHasMissing(i int) bool {
	for _, c := range d.columns {
		if c.IsMissing(i) {
			return true
		}
	}
	return false
}

// MemoryUsage estimates the bytes held per column, in column order
func (d *Dataset) MemoryUsage() map[string]int64 {
	usage := make(map[string]int64, len(d.columns))
	for _, c := range d.columns {
		usage[c.Name()] = c.MemoryUsage()
	}
	return usage
}

// TotalMemoryUsage sums MemoryUsage over all columns
func (d *Dataset) TotalMemoryUsage() int64 {
	var total int64
	for _, c := range d.columns {
		total += c.MemoryUsage()
	}
	return total
}

// Row returns row i keyed by column name; missing cells are nil
func (d *Dataset) Row(i int) map[string]interface{} {
	row := make(map[string]interface{}, len(d.columns))
	for _, c := range d.columns {
		row[c.Name()] = c.Cell(i)
	}
	return row
}

// Fingerprint hashes the schema and every cell, so equal content yields an equal hash
func (d *Dataset) Fingerprint() core.Hash {
	h := core.NewHasher()
	h.WriteString(strconv.Itoa(d.rows))
	for _, c := range d.columns {
		h.WriteString(c.Name())
		h.WriteString(string(c.Kind()))
	}
	for i := 0; i < d.rows; i++ {
		h.WriteString(d.RowKey(i))
	}
	return h.Sum()
}
