package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"

	apperrors "aivaceo/internal/errors"
)

// Kind is the single type every value of a column shares, fixed at ingestion
type Kind string

const (
	KindNumeric  Kind = "numeric"
	KindText     Kind = "text"
	KindDatetime Kind = "datetime"
)

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	switch k {
	case KindNumeric, KindText, KindDatetime:
		return true
	}
	return false
}

// missingKey stands in for a missing cell inside row and value keys
const missingKey = "\x00"

// Column is an immutable named vector of one kind with a validity mask.
// Only the slice matching the kind is populated.
type Column struct {
	name  string
	kind  Kind
	nums  []float64
	texts []string
	times []time.Time
	valid []bool
}

// Name returns the column name
func (c *Column) Name() string { return c.name }

// Kind returns the column kind
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells, missing included
func (c *Column) Len() int { return len(c.valid) }

// IsMissing reports whether cell i has no value
func (c *Column) IsMissing(i int) bool { return !c.valid[i] }

// Float returns the numeric value at i
func (c *Column) Float(i int) (float64, bool) {
	if c.kind != KindNumeric || !c.valid[i] {
		return 0, false
	}
	return c.nums[i], true
}

// Text returns the text value at i
func (c *Column) Text(i int) (string, bool) {
	if c.kind != KindText || !c.valid[i] {
		return "", false
	}
	return c.texts[i], true
}

// Time returns the datetime value at i
func (c *Column) Time(i int) (time.Time, bool) {
	if c.kind != KindDatetime || !c.valid[i] {
		return time.Time{}, false
	}
	return c.times[i], true
}

// Cell returns the value at i as float64, string or time.Time, nil when missing
func (c *Column) Cell(i int) interface{} {
	if !c.valid[i] {
		return nil
	}
	switch c.kind {
	case KindNumeric:
		return c.nums[i]
	case KindDatetime:
		return c.times[i]
	default:
		return c.texts[i]
	}
}

// Floats returns the non-missing numeric values in row order
func (c *Column) Floats() []float64 {
	if c.kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Texts returns the non-missing text values in row order
func (c *Column) Texts() []string {
	if c.kind != KindText {
		return nil
	}
	out := make([]string, 0, len(c.texts))
	for i, v := range c.texts {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Times returns the non-missing datetime values in row order
func (c *Column) Times() []time.Time {
	if c.kind != KindDatetime {
		return nil
	}
	out := make([]time.Time, 0, len(c.times))
	for i, v := range c.times {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// NullCount returns the number of missing cells
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

// Count returns the number of non-missing cells
func (c *Column) Count() int { return c.Len() - c.NullCount() }

// UniqueCount returns the number of distinct non-missing values
func (c *Column) UniqueCount() int {
	seen := make(map[string]struct{})
	for i := range c.valid {
		if c.valid[i] {
			seen[c.Key(i)] = struct{}{}
		}
	}
	return len(seen)
}

// Key returns a canonical string for cell i; equal values share a key and
// every missing cell maps to the same key.
func (c *Column) Key(i int) string {
	if !c.valid[i] {
		return missingKey
	}
	switch c.kind {
	case KindNumeric:
		v := c.nums[i]
		if v == 0 {
			v = 0 // folds -0 into 0
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case KindDatetime:
		return c.times[i].UTC().Format(time.RFC3339Nano)
	default:
		return c.texts[i]
	}
}

// Format renders cell i for display; missing cells render as an empty string
func (c *Column) Format(i int) string {
	if !c.valid[i] {
		return ""
	}
	switch c.kind {
	case KindNumeric:
		return strconv.FormatFloat(c.nums[i], 'g', -1, 64)
	case KindDatetime:
		return c.times[i].Format(time.RFC3339)
	default:
		return c.texts[i]
	}
}

// MemoryUsage estimates the bytes held by the column's Go representation
func (c *Column) MemoryUsage() int64 {
	var total int64
	switch c.kind {
	case KindNumeric:
		total = int64(len(c.nums)) * 8
	case KindDatetime:
		total = int64(len(c.times)) * 24
	default:
		for _, s := range c.texts {
			total += 16 + int64(len(s))
		}
	}
	return total + int64(len(c.valid))
}

// ColumnBuilder accumulates cells for a single column.
// Appending a value of the wrong kind is recorded and reported by Build.
type ColumnBuilder struct {
	col Column
	err error
}

// NewColumnBuilder starts a column of the given kind
func NewColumnBuilder(name string, kind Kind) *ColumnBuilder {
	return &ColumnBuilder{col: Column{name: name, kind: kind}}
}

func (b *ColumnBuilder) mismatch(want Kind) bool {
	if b.col.kind == want {
		return false
	}
	if b.err == nil {
		b.err = apperrors.InvalidInput(fmt.Sprintf("column '%s' is %s, cannot append %s value", b.col.name, b.col.kind, want))
	}
	return true
}

// AppendFloat adds a numeric cell; NaN and ±Inf become missing
func (b *ColumnBuilder) AppendFloat(v float64) *ColumnBuilder {
	if b.mismatch(KindNumeric) {
		return b
	}
	ok := !math.IsNaN(v) && !math.IsInf(v, 0)
	if !ok {
		v = 0
	}
	b.col.nums = append(b.col.nums, v)
	b.col.valid = append(b.col.valid, ok)
	return b
}

// AppendText adds a text cell
func (b *ColumnBuilder) AppendText(s string) *ColumnBuilder {
	if b.mismatch(KindText) {
		return b
	}
	b.col.texts = append(b.col.texts, s)
	b.col.valid = append(b.col.valid, true)
	return b
}

// AppendTime adds a datetime cell; the zero time becomes missing
func (b *ColumnBuilder) AppendTime(t time.Time) *ColumnBuilder {
	if b.mismatch(KindDatetime) {
		return b
	}
	b.col.times = append(b.col.times, t)
	b.col.valid = append(b.col.valid, !t.IsZero())
	return b
}

// AppendMissing adds a missing cell of the column's kind
func (b *ColumnBuilder) AppendMissing() *ColumnBuilder {
	switch b.col.kind {
	case KindNumeric:
		b.col.nums = append(b.col.nums, 0)
	case KindDatetime:
		b.col.times = append(b.col.times, time.Time{})
	default:
		b.col.texts = append(b.col.texts, "")
	}
	b.col.valid = append(b.col.valid, false)
	return b
}

// Len returns the number of cells appended so far
func (b *ColumnBuilder) Len() int { return len(b.col.valid) }

// Build freezes the column. The builder must not be reused afterwards.
func (b *ColumnBuilder) Build() (*Column, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.col.kind.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("column '%s' has unknown kind %q", b.col.name, b.col.kind))
	}
	col := b.col
	return &col, nil
}

// NewNumeric builds a numeric column; NaN values are missing
func NewNumeric(name string, values []float64) *Column {
	b := NewColumnBuilder(name, KindNumeric)
	for _, v := range values {
		b.AppendFloat(v)
	}
	col, _ := b.Build()
	return col
}

// NewText builds a text column with every cell present
func NewText(name string, values []string) *Column {
	b := NewColumnBuilder(name, KindText)
	for _, v := range values {
		b.AppendText(v)
	}
	col, _ := b.Build()
	return col
}

// NewDatetime builds a datetime column; zero times are missing
func NewDatetime(name string, values []time.Time) *Column {
	b := NewColumnBuilder(name, KindDatetime)
	for _, v := range values {
		b.AppendTime(v)
	}
	col, _ := b.Build()
	return col
}
