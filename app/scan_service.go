package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	"aivaceo/adapters/api"
	"aivaceo/adapters/coercer"
	"aivaceo/adapters/db"
	"aivaceo/adapters/excel"
	"aivaceo/domain/core"
	"aivaceo/domain/dataset"
	"aivaceo/domain/profile"
	apperrors "aivaceo/internal/errors"
	"aivaceo/internal/profiling"
	"aivaceo/internal/visualization"
	"aivaceo/ports"
)

// ServiceConfig carries the analysis and ingestion settings of a ScanService
type ServiceConfig struct {
	Analysis    profiling.Options
	Coercion    coercer.CoercionConfig
	Concurrency int      // report fan-out; zero means one worker per section
	DB          *sqlx.DB // optional, enables LoadQuery
}

// DefaultServiceConfig returns the default thresholds with no database
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Analysis:    profiling.DefaultOptions(),
		Coercion:    coercer.DefaultCoercionConfig(),
		Concurrency: 4,
	}
}

// ScanService keeps the loaded snapshots and hands out scanners and engines over them
type ScanService struct {
	store  ports.SnapshotStore
	config ServiceConfig
}

// NewScanService creates a service over a snapshot store
func NewScanService(store ports.SnapshotStore, config ServiceConfig) *ScanService {
	config.Analysis = config.Analysis.Normalize()
	return &ScanService{store: store, config: config}
}

// Config returns the service settings
func (s *ScanService) Config() ServiceConfig { return s.config }

// Register stores an already built dataset
func (s *ScanService) Register(ctx context.Context, name string, source dataset.Source, location string, ds *dataset.Dataset) (*dataset.Snapshot, error) {
	if ds == nil {
		return nil, apperrors.InvalidInput("dataset is required")
	}
	if strings.TrimSpace(name) == "" {
		name = string(source)
	}

	snap := dataset.NewSnapshot(name, source, location, ds)
	if err := s.store.Save(ctx, snap); err != nil {
		return nil, err
	}
	log.Printf("[ScanService] Registered %s (%s): %d rows x %d columns, fingerprint %s",
		snap.Name, snap.ID, ds.Rows(), ds.NumColumns(), snap.Fingerprint.Short())
	return snap, nil
}

// LoadFile reads a CSV or XLSX file from disk
func (s *ScanService) LoadFile(ctx context.Context, path, sheet string) (*dataset.Snapshot, error) {
	ds, err := s.readFile(path, sheet)
	if err != nil {
		return nil, err
	}
	return s.Register(ctx, filepath.Base(path), dataset.SourceFile, path, ds)
}

func (s *ScanService) readFile(path, sheet string) (*dataset.Dataset, error) {
	config := excel.ExcelConfig{FilePath: path, Sheet: sheet, CoercionConfig: s.config.Coercion}
	ds, err := excel.NewDataReader(config).ReadDataset()
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to load %s", path)
	}
	return ds, nil
}

// LoadUpload reads an uploaded CSV or XLSX stream
func (s *ScanService) LoadUpload(ctx context.Context, filename string, src io.Reader, sheet string) (*dataset.Snapshot, error) {
	config := excel.ExcelConfig{Sheet: sheet, CoercionConfig: s.config.Coercion}
	ds, err := excel.ReadUpload(filename, src, config)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to read upload %s", filename)
	}
	return s.Register(ctx, filename, dataset.SourceUpload, "", ds)
}

// LoadAPI fetches a JSON records feed
func (s *ScanService) LoadAPI(ctx context.Context, source api.RecordsSource) (*dataset.Snapshot, error) {
	ds, err := api.NewRecordsReader(source, s.config.Coercion).ReadDataset(ctx)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to load records from %s", source.BaseURL)
	}
	return s.Register(ctx, source.Name, dataset.SourceAPI, source.BaseURL, ds)
}

// LoadQuery runs a SQL query against the configured database
func (s *ScanService) LoadQuery(ctx context.Context, name, query string, args ...interface{}) (*dataset.Snapshot, error) {
	if s.config.DB == nil {
		return nil, apperrors.InvalidInput("no database configured")
	}
	ds, err := db.NewQueryReader(s.config.DB, s.config.Coercion).QueryDataset(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return s.Register(ctx, name, dataset.SourceQuery, query, ds)
}

// Get looks up a snapshot by its string ID
func (s *ScanService) Get(ctx context.Context, id string) (*dataset.Snapshot, error) {
	parsed, err := core.ParseID(id)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	return s.store.Get(ctx, parsed)
}

// List returns summaries of every live snapshot
func (s *ScanService) List(ctx context.Context) ([]dataset.Summary, error) {
	snaps, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dataset.Summary, len(snaps))
	for i, snap := range snaps {
		out[i] = snap.Summarize()
	}
	return out, nil
}

// Replace swaps the data behind id for ds. The old snapshot is left untouched;
// a new one with the same ID, name and origin takes its place.
func (s *ScanService) Replace(ctx context.Context, id string, ds *dataset.Dataset) (*dataset.Snapshot, error) {
	parsed, err := core.ParseID(id)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if ds == nil {
		return nil, apperrors.InvalidInput("dataset is required")
	}

	// the swap happens under the store's lock so a concurrent Remove cannot be undone
	var old *dataset.Snapshot
	next, err := s.store.Update(ctx, parsed, func(current *dataset.Snapshot) (*dataset.Snapshot, error) {
		old = current
		next := dataset.NewSnapshot(current.Name, current.Source, current.Location, ds)
		next.ID = current.ID
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[ScanService] Replaced %s (%s): fingerprint %s -> %s",
		next.Name, next.ID, old.Fingerprint.Short(), next.Fingerprint.Short())
	return next, nil
}

// Refresh re-reads a file-backed snapshot from its location
func (s *ScanService) Refresh(ctx context.Context, id, sheet string) (*dataset.Snapshot, error) {
	old, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if old.Source != dataset.SourceFile {
		return nil, apperrors.InvalidInput(fmt.Sprintf("dataset %s is not file backed", id))
	}
	ds, err := s.readFile(old.Location, sheet)
	if err != nil {
		return nil, err
	}
	return s.Replace(ctx, id, ds)
}

// FindByLocation returns the snapshots loaded from location
func (s *ScanService) FindByLocation(ctx context.Context, location string) ([]*dataset.Snapshot, error) {
	snaps, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*dataset.Snapshot
	for _, snap := range snaps {
		if snap.Location == location {
			out = append(out, snap)
		}
	}
	return out, nil
}

// RefreshLocation re-reads every file snapshot loaded from location and
// returns how many were replaced
func (s *ScanService) RefreshLocation(ctx context.Context, location, sheet string) (int, error) {
	snaps, err := s.FindByLocation(ctx, location)
	if err != nil {
		return 0, err
	}
	refreshed := 0
	for _, snap := range snaps {
		if snap.Source != dataset.SourceFile {
			continue
		}
		if _, err := s.Refresh(ctx, snap.ID.String(), sheet); err != nil {
			return refreshed, err
		}
		refreshed++
	}
	return refreshed, nil
}

// Remove deletes a snapshot
func (s *ScanService) Remove(ctx context.Context, id string) error {
	parsed, err := core.ParseID(id)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if err := s.store.Delete(ctx, parsed); err != nil {
		return err
	}
	log.Printf("[ScanService] Removed %s", parsed)
	return nil
}

// Scanner builds a fresh scanner over the snapshot's data
func (s *ScanService) Scanner(ctx context.Context, id string, opts ...profiling.Option) (*profiling.Scanner, error) {
	snap, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.ScannerFor(snap, opts...), nil
}

// ScannerFor builds a scanner over an already resolved snapshot
func (s *ScanService) ScannerFor(snap *dataset.Snapshot, opts ...profiling.Option) *profiling.Scanner {
	all := append([]profiling.Option{profiling.WithOptions(s.config.Analysis)}, opts...)
	return profiling.NewScanner(snap.Data, all...)
}

// Engine builds a fresh visualization engine over the snapshot's data
func (s *ScanService) Engine(ctx context.Context, id string) (*visualization.Engine, error) {
	snap, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.EngineFor(snap), nil
}

// EngineFor builds a visualization engine over an already resolved snapshot
func (s *ScanService) EngineFor(snap *dataset.Snapshot) *visualization.Engine {
	return visualization.NewEngine(snap.Data)
}

// Report runs every scanner operation for the snapshot
func (s *ScanService) Report(ctx context.Context, id string) (*profile.Report, error) {
	snap, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.ReportFor(ctx, snap)
}

// ReportFor runs every scanner operation over an already resolved snapshot
func (s *ScanService) ReportFor(ctx context.Context, snap *dataset.Snapshot) (*profile.Report, error) {
	report, err := profiling.BuildReport(ctx, s.ScannerFor(snap), s.config.Concurrency)
	if err != nil {
		return nil, err
	}
	report.Name = snap.Name
	return report, nil
}
