package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestDatasource(t *testing.T) (*Datasource, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ds, err := NewDatasource(ctx, nil)
	if err != nil {
		t.Fatalf("expected datasource to start, got: %v", err)
	}
	t.Cleanup(func() { ds.Close() })
	return ds, ctx
}

func receive(t *testing.T, datasets <-chan Dataset) Dataset {
	t.Helper()
	select {
	case ds := <-datasets:
		return ds
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for a dataset")
		return Dataset{}
	}
}

func TestDatasourceLoadFileAndReload(t *testing.T) {
	ds, ctx := newTestDatasource(t)
	path := filepath.Join(t.TempDir(), "trace.csv")
	if err := os.WriteFile(path, []byte(sampleTrace), 0o644); err != nil {
		t.Fatal(err)
	}
	datasets := ds.Datasets(ctx)
	if err := ds.LoadFile(path); err != nil {
		t.Fatalf("expected load to succeed, got: %v", err)
	}
	first := receive(t, datasets)
	if first.Len() != 3 || first.Err != nil {
		t.Fatalf("expected 3 samples without error, got %d (%v)", first.Len(), first.Err)
	}

	grown := sampleTrace + "1542672000000, 5, 6\n"
	if err := os.WriteFile(path, []byte(grown), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case next := <-datasets:
			if next.Len() == 4 {
				return
			}
		case <-deadline:
			t.Fatalf("expected the rewritten trace to be republished")
		}
	}
}

func TestDatasourceLateSubscriberSeesCurrent(t *testing.T) {
	ds, ctx := newTestDatasource(t)
	if err := ds.LoadReader("inline", strings.NewReader(sampleTrace)); err != nil {
		t.Fatalf("expected load to succeed, got: %v", err)
	}
	got := receive(t, ds.Datasets(ctx))
	if got.Source != "inline" || got.Len() != 3 {
		t.Errorf("expected current dataset, got %q with %d samples", got.Source, got.Len())
	}
}

func TestDatasourcePublishesErrors(t *testing.T) {
	ds, ctx := newTestDatasource(t)
	datasets := ds.Datasets(ctx)
	if err := ds.LoadReader("broken", strings.NewReader("time\n")); err == nil {
		t.Fatalf("expected load of a trace without series to fail")
	}
	got := receive(t, datasets)
	if got.Err == nil || got.Initialized() {
		t.Errorf("expected an uninitialized dataset carrying the error, got %+v", got)
	}
}

func TestDatasourceClosesStreamWithContext(t *testing.T) {
	ds, _ := newTestDatasource(t)
	ctx, cancel := context.WithCancel(context.Background())
	datasets := ds.Datasets(ctx)
	cancel()
	select {
	case _, ok := <-datasets:
		if ok {
			t.Errorf("expected no dataset before any load")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("expected stream to close with its context")
	}
}
