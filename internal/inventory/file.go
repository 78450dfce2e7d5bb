package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/staylink/concierge/internal/models"
)

// File serves a YAML or JSON document mapping tenant ids to property lists:
//
//	cabanas-sur:
//	  - id: c1
//	    name: Cabaña Lago
//	    capacity: 4
//	    location: {city: Pucón, region: Araucanía}
type File struct {
	path     string
	logger   zerolog.Logger
	debounce time.Duration

	mu      sync.RWMutex
	tenants map[string][]models.Property

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
}

// NewFile loads path. A missing file is an empty inventory that the first
// UpsertProperties creates.
func NewFile(path string, logger zerolog.Logger) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("inventory file path is required")
	}
	f := &File{
		path:     filepath.Clean(path),
		logger:   logger.With().Str("component", "inventory_file").Logger(),
		debounce: 300 * time.Millisecond,
		tenants:  map[string][]models.Property{},
	}
	if _, err := f.Reload(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return f, nil
}

// Reload re-reads the file and returns every tenant whose data may have changed.
func (f *File) Reload() ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	next, err := decodeInventory(f.path, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}

	f.mu.Lock()
	changed := make([]string, 0, len(next)+len(f.tenants))
	for t := range f.tenants {
		changed = append(changed, t)
	}
	for t := range next {
		if _, ok := f.tenants[t]; !ok {
			changed = append(changed, t)
		}
	}
	f.tenants = next
	f.mu.Unlock()

	return changed, nil
}

func (f *File) ListProperties(_ context.Context, tenantID string) ([]models.Property, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	props := f.tenants[tenantID]
	out := make([]models.Property, len(props))
	copy(out, props)
	return out, nil
}

func (f *File) Ping(context.Context) error {
	if _, err := os.Stat(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (f *File) UpsertProperties(_ context.Context, tenantID string, props []models.Property) error {
	if err := validate(tenantID, props); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	current := append([]models.Property(nil), f.tenants[tenantID]...)
	index := make(map[string]int, len(current))
	for i, p := range current {
		index[p.ID] = i
	}
	for _, p := range props {
		if i, ok := index[p.ID]; ok {
			current[i] = p
			continue
		}
		index[p.ID] = len(current)
		current = append(current, p)
	}

	next := make(map[string][]models.Property, len(f.tenants)+1)
	for t, ps := range f.tenants {
		next[t] = ps
	}
	next[tenantID] = current

	if err := writeInventory(f.path, next); err != nil {
		return err
	}
	f.tenants = next
	return nil
}

// Watch reloads the file whenever it changes until ctx is done. onReload, if
// set, receives the tenants returned by Reload.
func (f *File) Watch(ctx context.Context, onReload func(tenants []string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Editors replace files by rename, so watch the directory.
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", f.path, err)
	}

	f.watchMu.Lock()
	f.watcher = w
	f.watchMu.Unlock()

	f.logger.Info().Str("path", f.path).Msg("watching inventory file")
	go f.watchLoop(ctx, w, onReload)
	return nil
}

func (f *File) watchLoop(ctx context.Context, w *fsnotify.Watcher, onReload func([]string)) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
		_ = w.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != f.path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(f.debounce, func() {
				tenants, err := f.Reload()
				if err != nil {
					f.logger.Error().Err(err).Msg("inventory reload failed")
					return
				}
				f.logger.Info().Int("tenants", len(tenants)).Msg("inventory reloaded")
				if onReload != nil {
					onReload(tenants)
				}
			})
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.logger.Error().Err(err).Msg("inventory watcher error")
		}
	}
}

func (f *File) Close() error {
	f.watchMu.Lock()
	defer f.watchMu.Unlock()
	if f.watcher == nil {
		return nil
	}
	err := f.watcher.Close()
	f.watcher = nil
	return err
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func decodeInventory(path string, data []byte) (map[string][]models.Property, error) {
	out := map[string][]models.Property{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, nil
	}
	var err error
	if isJSON(path) {
		err = json.Unmarshal(data, &out)
	} else {
		err = yaml.Unmarshal(data, &out)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadFixtures parses a fixture document without opening a store.
func ReadFixtures(path string) (map[string][]models.Property, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeInventory(path, data)
}

func writeInventory(path string, tenants map[string][]models.Property) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(tenants, "", "  ")
	} else {
		data, err = yaml.Marshal(tenants)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".inventory-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
