// Package assets handles glTF asset loading, outline generation and caching.
package assets

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-outline/pkg/gltfasset"
	"github.com/Faultbox/midgard-outline/pkg/outline"
)

// Asset is a loaded document together with its outline report.
type Asset struct {
	Path     string
	Doc      *gltfasset.Document
	Report   outline.Report
	Outlined bool
}

// Manager loads assets and runs outline generation before handing them out.
// Each manager owns its cache; managers never share generated data.
type Manager struct {
	generator *outline.Generator
	cache     *Cache
	log       *zap.Logger
}

// NewManager creates a new asset manager.
func NewManager(log *zap.Logger, opts ...outline.Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	opts = append([]outline.Option{outline.WithLogger(log.Named("outline"))}, opts...)
	return &Manager{
		generator: outline.NewGenerator(opts...),
		cache:     NewCache(),
		log:       log,
	}
}

// Load opens the asset at path and outlines it. Results are cached by path.
func (m *Manager) Load(path string) (*Asset, error) {
	if a, ok := m.cache.Get(path); ok {
		return a, nil
	}

	doc, err := gltfasset.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading asset %s: %w", path, err)
	}

	a := m.Process(path, doc)
	m.cache.Set(path, a)
	return a, nil
}

// Process outlines an already loaded document without caching it.
func (m *Manager) Process(path string, doc *gltfasset.Document) *Asset {
	report, ok := m.generator.OutlineAsset(doc, gltfasset.NewResources(doc))
	m.log.Info("asset processed",
		zap.String("path", path),
		zap.Stringer("mode", m.generator.Mode()),
		zap.Bool("outlined", ok),
		zap.Int("primitives", len(report.Results)),
		zap.Int("skipped", report.Skipped))

	return &Asset{
		Path:     path,
		Doc:      doc,
		Report:   report,
		Outlined: ok,
	}
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close drops all cached assets.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Cache is an in-memory cache of processed assets.
type Cache struct {
	data map[string]*Asset
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*Asset),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return a, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, a *Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = a
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*Asset)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
