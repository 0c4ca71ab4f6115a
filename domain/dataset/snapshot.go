package dataset

import (
	"aivaceo/domain/core"
)

// Source describes where a snapshot's data came from
type Source string

const (
	SourceFile    Source = "file"
	SourceUpload  Source = "upload"
	SourceAPI     Source = "api"
	SourceQuery   Source = "query"
	SourceDemo    Source = "demo"
	SourceUnknown Source = "unknown"
)

// Snapshot is an immutable, identified dataset. Refreshing data produces a
// new snapshot; an existing one is never modified.
type Snapshot struct {
	ID          core.ID        `json:"id"`
	Name        string         `json:"name"`
	Source      Source         `json:"source"`
	Location    string         `json:"location,omitempty"` // path, URL or query that produced the data
	LoadedAt    core.Timestamp `json:"loaded_at"`
	Fingerprint core.Hash      `json:"fingerprint"`
	Data        *Dataset       `json:"-"`
}

// NewSnapshot wraps data with a fresh ID, load time and fingerprint
func NewSnapshot(name string, source Source, location string, data *Dataset) *Snapshot {
	return &Snapshot{
		ID:          core.NewID(),
		Name:        name,
		Source:      source,
		Location:    location,
		LoadedAt:    core.Now(),
		Fingerprint: data.Fingerprint(),
		Data:        data,
	}
}

// Summary is the listing view of a snapshot
type Summary struct {
	ID          core.ID         `json:"id"`
	Name        string          `json:"name"`
	Source      Source          `json:"source"`
	Location    string          `json:"location,omitempty"`
	LoadedAt    core.Timestamp  `json:"loaded_at"`
	Fingerprint core.Hash       `json:"fingerprint"`
	Rows        int             `json:"rows"`
	Columns     int             `json:"columns"`
	Kinds       map[string]Kind `json:"dtypes"`
	ColumnNames []string        `json:"column_names"`
}

// Summarize returns the listing view
func (s *Snapshot) Summarize() Summary {
	return Summary{
		ID:          s.ID,
		Name:        s.Name,
		Source:      s.Source,
		Location:    s.Location,
		LoadedAt:    s.LoadedAt,
		Fingerprint: s.Fingerprint,
		Rows:        s.Data.Rows(),
		Columns:     s.Data.NumColumns(),
		Kinds:       s.Data.Kinds(),
		ColumnNames: s.Data.ColumnNames(),
	}
}
