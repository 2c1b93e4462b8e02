package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"gioui.org/x/explorer"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// RWBox guards a value with a read/write lock.
type RWBox[T any] struct {
	t    T
	lock sync.RWMutex
}

func (r *RWBox[T]) Read(f func(*T)) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	f(&r.t)
}

func (r *RWBox[T]) Write(f func(*T)) {
	r.lock.Lock()
	defer r.lock.Unlock()
	f(&r.t)
}

// Datasource loads traces and republishes them whenever the file they were
// read from is rewritten.
type Datasource struct {
	logger  *log.Logger
	watcher *fsnotify.Watcher

	current RWBox[Dataset]
	// path is the watched trace, empty when the current dataset did not
	// come from a file.
	path RWBox[string]

	subsLock sync.Mutex
	subs     map[chan Dataset]struct{}
}

// NewDatasource starts a datasource whose file watcher runs until appCtx
// is cancelled.
func NewDatasource(appCtx context.Context, logger *log.Logger) (*Datasource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed creating file watcher: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	ds := &Datasource{
		logger:  logger.WithPrefix("datasource"),
		watcher: watcher,
		subs:    make(map[chan Dataset]struct{}),
	}
	go ds.watch(appCtx)
	return ds, nil
}

// Datasets streams the current dataset followed by every later one. Slow
// readers only ever observe the latest dataset. The channel is closed when
// ctx is done.
func (d *Datasource) Datasets(ctx context.Context) <-chan Dataset {
	out := make(chan Dataset, 1)
	d.subsLock.Lock()
	d.current.Read(func(ds *Dataset) {
		if ds.Initialized() || ds.Err != nil {
			out <- *ds
		}
	})
	d.subs[out] = struct{}{}
	d.subsLock.Unlock()
	go func() {
		<-ctx.Done()
		d.subsLock.Lock()
		defer d.subsLock.Unlock()
		delete(d.subs, out)
		close(out)
	}()
	return out
}

func (d *Datasource) publish(ds Dataset) {
	d.subsLock.Lock()
	defer d.subsLock.Unlock()
	d.current.Write(func(cur *Dataset) { *cur = ds })
	for sub := range d.subs {
		select {
		case <-sub:
		default:
		}
		sub <- ds
	}
}

func (d *Datasource) fail(source string, err error) error {
	d.logger.Error("failed loading trace", "source", source, "error", err)
	var ds Dataset
	d.current.Read(func(cur *Dataset) { ds = *cur })
	if ds.Source != source {
		ds = Dataset{Source: source}
	}
	ds.Err = err
	d.publish(ds)
	return err
}

// LoadFile reads the trace at path and watches it for changes.
func (d *Datasource) LoadFile(path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return d.fail(path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return d.fail(path, err)
	}
	defer f.Close()
	ds, err := ReadCSV(path, f)
	if err != nil {
		return d.fail(path, err)
	}
	d.watchPath(path)
	d.logger.Info("loaded trace", "source", path, "samples", ds.Len(), "series", len(ds.Series))
	d.publish(ds)
	return nil
}

// LoadReader reads a trace that cannot be watched for changes.
func (d *Datasource) LoadReader(source string, r io.Reader) error {
	ds, err := ReadCSV(source, r)
	if err != nil {
		return d.fail(source, err)
	}
	d.watchPath("")
	d.logger.Info("loaded trace", "source", source, "samples", ds.Len(), "series", len(ds.Series))
	d.publish(ds)
	return nil
}

// LoadFromFile asks the user for a trace. It blocks until the file picker
// is dismissed.
func (d *Datasource) LoadFromFile(expl *explorer.Explorer) error {
	file, err := expl.ChooseFile("csv")
	if err != nil {
		if errors.Is(err, explorer.ErrUserDecline) {
			return nil
		}
		return d.fail("file picker", err)
	}
	defer file.Close()
	if f, ok := file.(interface{ Name() string }); ok {
		if _, err := os.Stat(f.Name()); err == nil {
			return d.LoadFile(f.Name())
		}
		return d.LoadReader(f.Name(), file)
	}
	return d.LoadReader("picked file", file)
}

// watchPath moves the watch to the directory containing path. Editors that
// save by renaming a new file into place would otherwise drop the watch.
func (d *Datasource) watchPath(path string) {
	d.path.Write(func(cur *string) {
		if *cur == path {
			return
		}
		if *cur != "" {
			_ = d.watcher.Remove(filepath.Dir(*cur))
		}
		*cur = path
		if path == "" {
			return
		}
		if err := d.watcher.Add(filepath.Dir(path)); err != nil {
			d.logger.Warn("not watching trace for changes", "source", path, "error", err)
		}
	})
}

func (d *Datasource) reload(path string) {
	f, err := os.Open(path)
	if err != nil {
		d.fail(path, err)
		return
	}
	defer f.Close()
	lines := NewLineReader(f)
	ds, err := ReadCSV(path, lines)
	if err != nil {
		d.fail(path, err)
		return
	}
	d.logger.Debug("reloaded trace", "source", path, "samples", ds.Len(), "held back", lines.Pending())
	d.publish(ds)
}

func (d *Datasource) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			var path string
			d.path.Read(func(cur *string) { path = *cur })
			if path == "" || filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				d.reload(path)
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.logger.Warn("file watcher error", "error", err)
		}
	}
}

// Close stops watching for changes.
func (d *Datasource) Close() error {
	return d.watcher.Close()
}
