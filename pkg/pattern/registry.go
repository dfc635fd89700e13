package pattern

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"
)

//go:embed formats/*.yaml
var builtinFormats embed.FS

// ErrNotFound is returned when a format ID is not registered.
var ErrNotFound = errors.New("pattern not found")

// Registry manages a collection of format patterns.
type Registry interface {
	// Register adds a pattern to the registry
	Register(pattern *FormatPattern) error

	// Unregister removes a pattern from the registry
	Unregister(formatID string) error

	// Get returns a pattern by its format ID
	Get(formatID string) (*FormatPattern, bool)

	// List returns all registered patterns in detection order
	List() []*FormatPattern

	// Reload reloads all patterns from the configured sources
	Reload() error

	// Watch starts watching the pattern directory for changes
	Watch() error

	// StopWatch stops watching the pattern directory
	StopWatch()

	// LoadDirectory loads all patterns from a directory
	LoadDirectory(dir string) error

	// LoadFile loads a single pattern file
	LoadFile(path string) error
}

// DefaultRegistry is the default implementation of the pattern Registry.
type DefaultRegistry struct {
	mu       sync.RWMutex
	patterns map[string]*FormatPattern
	builtin  bool
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(event string, pattern *FormatPattern)
	logger   *slog.Logger
}

// NewRegistry creates a new, empty pattern registry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		patterns: make(map[string]*FormatPattern),
		logger:   slog.New(slog.DiscardHandler),
	}
}

// NewBuiltinRegistry creates a registry holding the embedded credit-report formats.
func NewBuiltinRegistry() (*DefaultRegistry, error) {
	r := NewRegistry()
	r.builtin = true
	patterns, err := loadBuiltin()
	if err != nil {
		return nil, err
	}
	r.patterns = patterns
	return r, nil
}

// NewRegistryWithDirectory creates a builtin registry and overlays the patterns in dir.
// A pattern in dir replaces the builtin pattern with the same format ID.
func NewRegistryWithDirectory(dir string) (*DefaultRegistry, error) {
	r, err := NewBuiltinRegistry()
	if err != nil {
		return nil, err
	}
	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// SetLogger sets the logger used to report watch and reload failures.
func (r *DefaultRegistry) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Register adds a pattern to the registry. Registering the same format ID and
// version twice is an error; a different version replaces the existing pattern.
func (r *DefaultRegistry) Register(pattern *FormatPattern) error {
	if err := prepare(pattern); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.patterns[pattern.FormatID]; ok {
		if existing.Version == pattern.Version {
			return fmt.Errorf("pattern %q version %s already registered", pattern.FormatID, pattern.Version)
		}
	}

	r.patterns[pattern.FormatID] = pattern
	return nil
}

func prepare(pattern *FormatPattern) error {
	if pattern == nil {
		return fmt.Errorf("pattern cannot be nil")
	}
	if err := pattern.Validate(); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	if !pattern.IsCompiled() {
		if err := pattern.Compile(); err != nil {
			return fmt.Errorf("compiling pattern %q: %w", pattern.FormatID, err)
		}
	}
	return nil
}

// Unregister removes a pattern from the registry.
func (r *DefaultRegistry) Unregister(formatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patterns[formatID]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, formatID)
	}

	delete(r.patterns, formatID)
	return nil
}

// Get returns a pattern by its format ID.
func (r *DefaultRegistry) Get(formatID string) (*FormatPattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pattern, ok := r.patterns[formatID]
	return pattern, ok
}

// List returns all registered patterns ordered by priority, then format ID.
func (r *DefaultRegistry) List() []*FormatPattern {
	r.mu.RLock()
	patterns := make([]*FormatPattern, 0, len(r.patterns))
	for _, p := range r.patterns {
		patterns = append(patterns, p)
	}
	r.mu.RUnlock()

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Priority != patterns[j].Priority {
			return patterns[i].Priority < patterns[j].Priority
		}
		return patterns[i].FormatID < patterns[j].FormatID
	})
	return patterns
}

// Count returns the number of registered patterns.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patterns)
}

// LoadDirectory loads all YAML pattern files from a directory.
func (r *DefaultRegistry) LoadDirectory(dir string) error {
	r.dir = dir

	patterns, err := readDirectory(dir)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range patterns {
		r.patterns[id] = p
	}
	return nil
}

// LoadFile loads a single pattern file, replacing any pattern with the same format ID.
func (r *DefaultRegistry) LoadFile(path string) error {
	pattern, err := readFile(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns[pattern.FormatID] = pattern
	return nil
}

// Reload rebuilds the registry from its builtin patterns and configured directory.
// The new set is swapped in atomically, so concurrent detection never sees a
// half-loaded registry.
func (r *DefaultRegistry) Reload() error {
	if r.dir == "" && !r.builtin {
		return fmt.Errorf("no directory configured for reload")
	}

	patterns := make(map[string]*FormatPattern)
	if r.builtin {
		builtin, err := loadBuiltin()
		if err != nil {
			return err
		}
		patterns = builtin
	}
	if r.dir != "" {
		fromDir, err := readDirectory(r.dir)
		if err != nil {
			return err
		}
		for id, p := range fromDir {
			patterns[id] = p
		}
	}

	r.mu.Lock()
	r.patterns = patterns
	r.mu.Unlock()
	return nil
}

// SetOnChange sets a callback function that is called when patterns change.
func (r *DefaultRegistry) SetOnChange(fn func(event string, pattern *FormatPattern)) {
	r.onChange = fn
}

// Watch starts watching the pattern directory for changes.
func (r *DefaultRegistry) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})
	go r.watchLoop(watcher, r.stopChan)

	return nil
}

// watchLoop handles file system events.
func (r *DefaultRegistry) watchLoop(watcher *fsnotify.Watcher, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if !isYAML(event.Name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				r.handleFileChange(event.Name, "create")

			case event.Op&fsnotify.Write == fsnotify.Write:
				r.handleFileChange(event.Name, "modify")

			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleFileRemove(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("format pattern watcher error", "dir", r.dir, "error", err)
		}
	}
}

// handleFileChange handles file creation or modification.
func (r *DefaultRegistry) handleFileChange(path string, eventType string) {
	pattern, err := readFile(path)
	if err != nil {
		r.logger.Warn("ignoring invalid format pattern", "path", path, "error", err)
		return
	}

	r.mu.Lock()
	r.patterns[pattern.FormatID] = pattern
	r.mu.Unlock()

	r.logger.Info("format pattern loaded", "path", path, "format_id", pattern.FormatID, "event", eventType)
	if r.onChange != nil {
		r.onChange(eventType, pattern)
	}
}

// handleFileRemove handles file removal. The file no longer exists, so the whole
// registry is rebuilt rather than tracking which format each file held.
func (r *DefaultRegistry) handleFileRemove(path string) {
	if err := r.Reload(); err != nil {
		r.logger.Warn("reloading format patterns failed", "path", path, "error", err)
		return
	}

	if r.onChange != nil {
		r.onChange("remove", nil)
	}
}

// StopWatch stops watching the pattern directory.
func (r *DefaultRegistry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}

// Clear removes all patterns from the registry.
func (r *DefaultRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = make(map[string]*FormatPattern)
}

func loadBuiltin() (map[string]*FormatPattern, error) {
	patterns := make(map[string]*FormatPattern)
	err := fs.WalkDir(builtinFormats, "formats", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := builtinFormats.ReadFile(path)
		if err != nil {
			return err
		}
		pattern, err := decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		patterns[pattern.FormatID] = pattern
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading builtin formats: %w", err)
	}
	return patterns, nil
}

func readDirectory(dir string) (map[string]*FormatPattern, error) {
	patterns := make(map[string]*FormatPattern)

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// Directory doesn't exist, nothing to load
			return patterns, nil
		}
		return nil, fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		pattern, err := readFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		patterns[pattern.FormatID] = pattern
	}

	if len(loadErrors) > 0 {
		return nil, fmt.Errorf("errors loading patterns: %s", strings.Join(loadErrors, "; "))
	}
	return patterns, nil
}

func readFile(path string) (*FormatPattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (*FormatPattern, error) {
	var pattern FormatPattern
	if err := yaml.Unmarshal(data, &pattern); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := prepare(&pattern); err != nil {
		return nil, err
	}
	return &pattern, nil
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
