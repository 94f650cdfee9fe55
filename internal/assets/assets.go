// Package assets manages the brush stamp library: built-in shapes plus
// stamp images loaded from a directory, with a decode cache and optional
// hot reload.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/terrapaint/internal/brush"
	"github.com/Faultbox/terrapaint/internal/logger"
	"github.com/Faultbox/terrapaint/internal/texture"
)

var ErrStampNotFound = errors.New("assets: stamp not found")

// Library holds the selectable stamps in a stable order: built-ins first,
// then directory stamps sorted by file name.
type Library struct {
	dir      string
	res      int
	builtins int
	cache    *Cache

	mu     sync.RWMutex
	stamps []*brush.Stamp
}

// NewLibrary creates a library containing only the built-in stamps.
func NewLibrary(res int) *Library {
	if res <= 0 {
		res = brush.DefaultStampResolution
	}
	stamps := brush.Builtins(res)
	return &Library{
		res:      res,
		builtins: len(stamps),
		cache:    NewCache(),
		stamps:   stamps,
	}
}

// LoadDir scans dir for stamp images and adds them after the built-ins.
// Files that fail to decode are logged and skipped. A missing directory
// is not an error.
func (l *Library) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("stamp directory not found", zap.String("dir", dir))
			return nil
		}
		return fmt.Errorf("reading stamp directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !texture.SupportedExt(filepath.Ext(e.Name())) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	l.mu.Lock()
	l.dir = dir
	l.mu.Unlock()

	for _, name := range names {
		if err := l.Reload(filepath.Join(dir, name)); err != nil {
			logger.Warn("skipping stamp", zap.String("file", name), zap.Error(err))
		}
	}
	logger.Info("stamp library loaded", zap.String("dir", dir), zap.Int("stamps", l.Len()))
	return nil
}

// Dir returns the directory last passed to LoadDir.
func (l *Library) Dir() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dir
}

// Reload decodes path and inserts or replaces the stamp named after it.
// A path that no longer exists removes the stamp.
func (l *Library) Reload(path string) error {
	name := stampName(path)

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		l.remove(name)
		return nil
	}
	if err != nil {
		return err
	}

	// Keyed by modification time so an edited file is decoded again.
	key := fmt.Sprintf("%s@%d", path, info.ModTime().UnixNano())
	stamp, err := l.decode(key, path)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range l.stamps {
		if s.Name == name {
			l.stamps[i] = stamp
			return nil
		}
	}
	l.stamps = append(l.stamps, stamp)
	user := l.stamps[l.builtins:]
	sort.Slice(user, func(i, j int) bool { return user[i].Name < user[j].Name })
	return nil
}

func (l *Library) decode(key, path string) (*brush.Stamp, error) {
	if s, ok := l.cache.Get(key); ok {
		return s, nil
	}
	img, err := texture.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	s := brush.NewStamp(stampName(path), img, l.res)
	l.cache.Set(key, s)
	return s, nil
}

func (l *Library) remove(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := l.builtins; i < len(l.stamps); i++ {
		if l.stamps[i].Name == name {
			l.stamps = append(l.stamps[:i], l.stamps[i+1:]...)
			return
		}
	}
}

// Get returns the stamp with the given name.
func (l *Library) Get(name string) (*brush.Stamp, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.stamps {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrStampNotFound, name)
}

// At returns the stamp at index i, wrapping around in both directions so
// that cycling through stamps never runs off the end.
func (l *Library) At(i int) *brush.Stamp {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := len(l.stamps)
	return l.stamps[((i%n)+n)%n]
}

// Len returns the number of stamps.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.stamps)
}

// Names lists stamp names in library order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, len(l.stamps))
	for i, s := range l.stamps {
		names[i] = s.Name
	}
	return names
}

// CacheStats reports decode cache hits and misses.
func (l *Library) CacheStats() (hits, misses int) {
	return l.cache.Stats()
}

func stampName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Cache is an in-memory cache of decoded stamps keyed by file path.
type Cache struct {
	data map[string]*brush.Stamp
	mu   sync.RWMutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{data: make(map[string]*brush.Stamp)}
}

// Get retrieves a stamp from the cache.
func (c *Cache) Get(key string) (*brush.Stamp, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return s, ok
}

// Set stores a stamp.
func (c *Cache) Set(key string, s *brush.Stamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = s
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
