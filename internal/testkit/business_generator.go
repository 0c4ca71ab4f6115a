package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"aivaceo/domain/dataset"
)

// BusinessGeneratorConfig configures the business table generator
type BusinessGeneratorConfig struct {
	RowCount      int       `json:"row_count"`
	NullRate      float64   `json:"null_rate"`      // share of optional cells left empty
	OutlierRate   float64   `json:"outlier_rate"`   // share of amounts multiplied far out of range
	DuplicateRows int       `json:"duplicate_rows"` // rows repeated verbatim at the end
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Seed          int64     `json:"seed"`
}

// DefaultBusinessConfig returns sensible defaults for business data generation
func DefaultBusinessConfig() BusinessGeneratorConfig {
	return BusinessGeneratorConfig{
		RowCount:      200,
		NullRate:      0.05,
		OutlierRate:   0.02,
		DuplicateRows: 3,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Seed:          42,
	}
}

// BusinessDataGenerator generates customer and invoice tables of a small services business
type BusinessDataGenerator struct {
	config BusinessGeneratorConfig
	rng    *rand.Rand
}

// NewBusinessDataGenerator creates a new business data generator
func NewBusinessDataGenerator(config BusinessGeneratorConfig) *BusinessDataGenerator {
	if config.RowCount < 0 {
		config.RowCount = 0
	}
	if !config.EndDate.After(config.StartDate) {
		config.EndDate = config.StartDate.AddDate(0, 1, 0)
	}
	return &BusinessDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	firstNames = []string{"Ada", "Grace", "Alan", "Linus", "Barbara", "Ken", "Margaret", "Dennis", "Frances", "Edsger", "Radia", "John"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Torvalds", "Liskov", "Thompson", "Hamilton", "Ritchie", "Allen", "Dijkstra", "Perlman", "Backus"}
	companies  = []string{"acme", "globex", "initech", "umbrella", "hooli", "stark", "wayne", "wonka", "tyrell", "cyberdyne"}
	statuses   = []string{"paid", "paid", "paid", "open", "overdue", "void"}
	regions    = []string{"north", "south", "east", "west"}
	segments   = []string{"smb", "mid_market", "enterprise"}
)

// Invoices generates invoice_id, customer, email, phone, website, quantity,
// unit_price, amount, issued, status and region. Amount tracks quantity·unit_price.
func (g *BusinessDataGenerator) Invoices() (*dataset.Dataset, error) {
	n := g.config.RowCount
	rows := make([]map[string]interface{}, 0, n+g.config.DuplicateRows)

	for i := 0; i < n; i++ {
		name, company := g.person()
		quantity := float64(1 + g.rng.Intn(20))
		unitPrice := math.Round((20+g.rng.Float64()*80)*100) / 100
		amount := math.Round(quantity*unitPrice*(0.95+g.rng.Float64()*0.1)*100) / 100
		if g.rng.Float64() < g.config.OutlierRate {
			amount *= 25
		}

		row := map[string]interface{}{
			"invoice_id": fmt.Sprintf("INV-%05d", i+1),
			"customer":   name,
			"email":      g.optional(fmt.Sprintf("%s@%s.com", strings.ToLower(strings.ReplaceAll(name, " ", ".")), company)),
			"phone":      g.optional(g.phone()),
			"website":    g.optional(fmt.Sprintf("https://www.%s.com", company)),
			"quantity":   quantity,
			"unit_price": unitPrice,
			"amount":     g.optionalFloat(amount),
			"issued":     g.randomTimeInRange(g.config.StartDate, g.config.EndDate),
			"status":     statuses[g.rng.Intn(len(statuses))],
			"region":     g.optional(regions[g.rng.Intn(len(regions))]),
		}
		rows = append(rows, row)
	}
	rows = g.duplicate(rows)

	return build(rows, []column{
		{"invoice_id", dataset.KindText},
		{"customer", dataset.KindText},
		{"email", dataset.KindText},
		{"phone", dataset.KindText},
		{"website", dataset.KindText},
		{"quantity", dataset.KindNumeric},
		{"unit_price", dataset.KindNumeric},
		{"amount", dataset.KindNumeric},
		{"issued", dataset.KindDatetime},
		{"status", dataset.KindText},
		{"region", dataset.KindText},
	})
}

// Customers generates customer_id, name, email, segment, signup_date, orders and lifetime_value
func (g *BusinessDataGenerator) Customers() (*dataset.Dataset, error) {
	n := g.config.RowCount
	rows := make([]map[string]interface{}, 0, n+g.config.DuplicateRows)

	for i := 0; i < n; i++ {
		name, company := g.person()
		orders := float64(g.rng.Intn(30))
		value := math.Round(orders*(150+g.rng.NormFloat64()*25)*100) / 100
		if value < 0 {
			value = 0
		}
		rows = append(rows, map[string]interface{}{
			"customer_id":    fmt.Sprintf("CUST-%04d", i+1),
			"name":           name,
			"email":          g.optional(fmt.Sprintf("%s@%s.com", strings.ToLower(strings.ReplaceAll(name, " ", "_")), company)),
			"segment":        segments[g.rng.Intn(len(segments))],
			"signup_date":    g.randomTimeInRange(g.config.StartDate, g.config.EndDate),
			"orders":         orders,
			"lifetime_value": g.optionalFloat(value),
		})
	}
	rows = g.duplicate(rows)

	return build(rows, []column{
		{"customer_id", dataset.KindText},
		{"name", dataset.KindText},
		{"email", dataset.KindText},
		{"segment", dataset.KindText},
		{"signup_date", dataset.KindDatetime},
		{"orders", dataset.KindNumeric},
		{"lifetime_value", dataset.KindNumeric},
	})
}

type column struct {
	name string
	kind dataset.Kind
}

// build turns generated rows into columns; nil cells are missing
func build(rows []map[string]interface{}, columns []column) (*dataset.Dataset, error) {
	cols := make([]*dataset.Column, len(columns))
	for j, c := range columns {
		b := dataset.NewColumnBuilder(c.name, c.kind)
		for _, row := range rows {
			switch v := row[c.name].(type) {
			case nil:
				b.AppendMissing()
			case float64:
				b.AppendFloat(v)
			case string:
				b.AppendText(v)
			case time.Time:
				b.AppendTime(v)
			}
		}
		col, err := b.Build()
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}
	return dataset.New(cols...)
}

func (g *BusinessDataGenerator) duplicate(rows []map[string]interface{}) []map[string]interface{} {
	n := len(rows)
	if n == 0 {
		return rows
	}
	for i := 0; i < g.config.DuplicateRows; i++ {
		rows = append(rows, rows[g.rng.Intn(n)])
	}
	return rows
}

func (g *BusinessDataGenerator) person() (name, company string) {
	name = firstNames[g.rng.Intn(len(firstNames))] + " " + lastNames[g.rng.Intn(len(lastNames))]
	return name, companies[g.rng.Intn(len(companies))]
}

func (g *BusinessDataGenerator) phone() string {
	return fmt.Sprintf("(%03d) %03d-%04d", 200+g.rng.Intn(800), 200+g.rng.Intn(800), g.rng.Intn(10000))
}

func (g *BusinessDataGenerator) optional(v string) interface{} {
	if g.rng.Float64() < g.config.NullRate {
		return nil
	}
	return v
}

func (g *BusinessDataGenerator) optionalFloat(v float64) interface{} {
	if g.rng.Float64() < g.config.NullRate {
		return nil
	}
	return v
}

// randomTimeInRange returns a day-aligned time in [start, end)
func (g *BusinessDataGenerator) randomTimeInRange(start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return start
	}
	return start.AddDate(0, 0, g.rng.Intn(days))
}

// WriteCSV writes ds with a header row; missing cells are empty
func WriteCSV(w io.Writer, ds *dataset.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.ColumnNames()); err != nil {
		return err
	}
	columns := ds.Columns()
	record := make([]string, len(columns))
	for i := 0; i < ds.Rows(); i++ {
		for j, col := range columns {
			record[j] = col.Format(i)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes ds to path
func WriteCSVFile(path string, ds *dataset.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
