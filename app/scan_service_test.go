package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aivaceo/adapters/api"
	"aivaceo/adapters/db"
	"aivaceo/adapters/memory"
	"aivaceo/domain/dataset"
	apperrors "aivaceo/internal/errors"
	"aivaceo/internal/testkit"
)

func newService(t *testing.T) *ScanService {
	t.Helper()
	return NewScanService(memory.NewSnapshotStore(0), DefaultServiceConfig())
}

func demo(t *testing.T, rows int) *dataset.Dataset {
	t.Helper()
	config := testkit.DefaultBusinessConfig()
	config.RowCount = rows
	ds, err := testkit.NewBusinessDataGenerator(config).Invoices()
	require.NoError(t, err)
	return ds
}

func TestRegisterAndReport(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	snap, err := svc.Register(ctx, "invoices", dataset.SourceDemo, "", demo(t, 60))
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "invoices", list[0].Name)
	assert.Equal(t, 63, list[0].Rows)

	report, err := svc.Report(ctx, snap.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "invoices", report.Name)
	assert.Len(t, report.Columns, 11)
	assert.NotNil(t, report.Correlations)

	scanner, err := svc.Scanner(ctx, snap.ID.String())
	require.NoError(t, err)
	assert.Same(t, snap.Data, scanner.Dataset())

	engine, err := svc.Engine(ctx, snap.ID.String())
	require.NoError(t, err)
	assert.NotNil(t, engine.CorrelationHeatmap())
}

func TestGetErrors(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Get(ctx, " ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Get(ctx, "0190d7a8-0000-7000-8000-000000000000")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	assert.True(t, apperrors.HasCode(svc.Remove(ctx, "0190d7a8-0000-7000-8000-000000000000"), apperrors.CodeNotFound))

	_, err = svc.Register(ctx, "x", dataset.SourceDemo, "", nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestLoadFileAndRefresh(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("region,amount\nnorth,10\nsouth,20\n"), 0o644))

	snap, err := svc.LoadFile(ctx, path, "")
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", snap.Name)
	assert.Equal(t, dataset.SourceFile, snap.Source)
	assert.Equal(t, 2, snap.Data.Rows())

	require.NoError(t, os.WriteFile(path, []byte("region,amount\nnorth,10\nsouth,20\neast,30\n"), 0o644))
	next, err := svc.Refresh(ctx, snap.ID.String(), "")
	require.NoError(t, err)

	assert.Equal(t, snap.ID, next.ID)
	assert.NotSame(t, snap, next)
	assert.Equal(t, 2, snap.Data.Rows(), "the previous snapshot is never mutated")
	assert.Equal(t, 3, next.Data.Rows())
	assert.NotEqual(t, snap.Fingerprint, next.Fingerprint)

	found, err := svc.FindByLocation(ctx, path)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Same(t, next, found[0])

	_, err = svc.LoadFile(ctx, filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestReplaceAfterRemoveDoesNotResurrect(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	snap, err := svc.Register(ctx, "invoices", dataset.SourceDemo, "", demo(t, 10))
	require.NoError(t, err)
	id := snap.ID.String()

	require.NoError(t, svc.Remove(ctx, id))
	_, err = svc.Replace(ctx, id, demo(t, 20))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.Get(ctx, id)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReplaceRacingRemove(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	ds := demo(t, 10)

	for i := 0; i < 20; i++ {
		snap, err := svc.Register(ctx, "invoices", dataset.SourceDemo, "", ds)
		require.NoError(t, err)
		id := snap.ID.String()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Replace(ctx, id, ds)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Remove(ctx, id))
		}()
		wg.Wait()

		_, err = svc.Get(ctx, id)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "removed dataset came back")
	}
}

func TestRefreshRejectsNonFileSources(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	snap, err := svc.LoadUpload(ctx, "upload.csv", strings.NewReader("a\n1\n2\n"), "")
	require.NoError(t, err)
	assert.Equal(t, dataset.SourceUpload, snap.Source)

	_, err = svc.Refresh(ctx, snap.ID.String(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestLoadAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"records":[{"deal":"A","value":100},{"deal":"B","value":250}]}`)
	}))
	defer server.Close()

	source := api.DefaultRecordsSource(server.URL)
	source.Name = "pipeline"
	source.DataPath = "records"

	snap, err := newService(t).LoadAPI(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, dataset.SourceAPI, snap.Source)
	assert.Equal(t, []string{"deal", "value"}, snap.Data.ColumnNames())
}

func TestLoadQuery(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	_, err := svc.LoadQuery(ctx, "q", "SELECT 1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	conn, err := db.Connect(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()
	conn.MustExec(`CREATE TABLE leads (source TEXT, score REAL)`)
	conn.MustExec(`INSERT INTO leads VALUES ('ads', 0.4), ('referral', 0.9)`)

	config := DefaultServiceConfig()
	config.DB = conn
	svc = NewScanService(memory.NewSnapshotStore(0), config)

	snap, err := svc.LoadQuery(ctx, "leads", "SELECT source, score FROM leads")
	require.NoError(t, err)
	assert.Equal(t, dataset.SourceQuery, snap.Source)
	assert.Equal(t, 2, snap.Data.Rows())
}

func TestRefreshLocation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte("v\n1\n"), 0o644))
	snap, err := svc.LoadFile(ctx, path, "")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("v\n1\n2\n"), 0o644))
	n, err := svc.RefreshLocation(ctx, path, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	current, err := svc.Get(ctx, snap.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, current.Data.Rows())

	n, err = svc.RefreshLocation(ctx, "/elsewhere.csv", "")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
