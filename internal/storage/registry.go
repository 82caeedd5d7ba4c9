package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/leengari/labcheck/internal/domain/formula"
)

// ErrSetNotFound is returned when no file or directory backs a formula set
var ErrSetNotFound = errors.New("formula set not found")

// Registry manages named formula sets under a base directory in a thread-safe way.
// A set named "water" lives in water.yaml, water.yml, water.json or a water/ directory.
type Registry struct {
	mu       sync.RWMutex
	loaded   map[string][]formula.Formula
	basePath string
	logger   *slog.Logger
}

// NewRegistry creates a registry rooted at basePath
func NewRegistry(basePath string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		loaded:   make(map[string][]formula.Formula),
		basePath: basePath,
		logger:   logger,
	}
}

// Get loads a formula set (or returns the cached one)
func (r *Registry) Get(name string) ([]formula.Formula, error) {
	r.mu.RLock()
	fs, ok := r.loaded[name]
	r.mu.RUnlock()
	if ok {
		return fs, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// another goroutine may have loaded it meanwhile
	if fs, ok := r.loaded[name]; ok {
		return fs, nil
	}

	fs, err := r.load(name)
	if err != nil {
		return nil, err
	}
	r.loaded[name] = fs
	return fs, nil
}

// Reload drops the cached copy and reads the set from disk again
func (r *Registry) Reload(name string) ([]formula.Formula, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fs, err := r.load(name)
	if err != nil {
		delete(r.loaded, name)
		return nil, err
	}
	r.loaded[name] = fs
	r.logger.Info("formula set reloaded", slog.String("set", name), slog.Int("formulas", len(fs)))
	return fs, nil
}

// Put persists the set as <name>.yaml and caches it
func (r *Registry) Put(name string, formulas []formula.Formula) error {
	if err := checkSetName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create formula directory: %w", err)
	}
	if err := SaveFormulas(filepath.Join(r.basePath, name+".yaml"), formulas); err != nil {
		return err
	}
	r.loaded[name] = formulas
	return nil
}

// List returns the names of all sets on disk, sorted
func (r *Registry) List() ([]string, error) {
	entries, err := os.ReadDir(r.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read formula directory: %w", err)
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			seen[name] = true
			continue
		}
		if isFormulaFile(name) {
			seen[strings.TrimSuffix(name, filepath.Ext(name))] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Registry) load(name string) ([]formula.Formula, error) {
	if err := checkSetName(name); err != nil {
		return nil, err
	}

	candidates := []string{
		filepath.Join(r.basePath, name+".yaml"),
		filepath.Join(r.basePath, name+".yml"),
		filepath.Join(r.basePath, name+".json"),
		filepath.Join(r.basePath, name),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFormulas(path, r.logger)
	}
	return nil, fmt.Errorf("%w: %s", ErrSetNotFound, name)
}

func checkSetName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid formula set name %q", name)
	}
	return nil
}
