package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Source produces card definitions for a Catalog.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Definition, error)
}

// Query filters definitions. Zero-valued fields match everything.
type Query struct {
	Type       CardType
	Class      Class
	Rarity     Rarity
	Race       Race
	Keyword    Keyword
	MinCost    *int
	MaxCost    *int
	Exclude    []int
	AllowToken bool
}

// Matches reports whether the definition satisfies every set field.
func (q Query) Matches(d *Definition) bool {
	if d == nil {
		return false
	}
	if !q.AllowToken && d.Token {
		return false
	}
	if q.Type != "" && d.Type != q.Type {
		return false
	}
	if q.Class != "" && d.Class != q.Class {
		return false
	}
	if q.Rarity != "" && d.Rarity != q.Rarity {
		return false
	}
	if q.Race != RaceNone && !d.Race.Is(q.Race) {
		return false
	}
	if q.Keyword != "" && !d.HasKeyword(q.Keyword) {
		return false
	}
	if q.MinCost != nil && d.Cost < *q.MinCost {
		return false
	}
	if q.MaxCost != nil && d.Cost > *q.MaxCost {
		return false
	}
	if slices.Contains(q.Exclude, d.ID) {
		return false
	}
	return true
}

// Catalog is a read-only, lazily initialized index of card definitions.
// The first lookup loads the configured source; a nil source loads the
// embedded demo set. Returned definitions are copies.
type Catalog struct {
	source Source
	logger *zap.Logger

	once    sync.Once
	loadErr error

	mu      sync.RWMutex
	ordered []*Definition
	byID    map[int]*Definition
	byName  map[string]*Definition
}

// New creates a catalog over the given source.
func New(source Source, logger *zap.Logger) *Catalog {
	if source == nil {
		source = DemoSource{}
	}
	return &Catalog{
		source: source,
		logger: logger,
		byID:   make(map[int]*Definition),
		byName: make(map[string]*Definition),
	}
}

// NewFromDefinitions builds an already initialized catalog.
func NewFromDefinitions(defs []Definition) *Catalog {
	c := New(staticSource(defs), nil)
	c.Load(context.Background())
	return c
}

type staticSource []Definition

func (s staticSource) Name() string { return "static" }

func (s staticSource) Load(context.Context) ([]Definition, error) {
	return s, nil
}

// Load initializes the catalog eagerly. It is safe to call more than once;
// only the first call reads the source.
func (c *Catalog) Load(ctx context.Context) error {
	c.once.Do(func() {
		c.loadErr = c.load(ctx)
	})
	return c.loadErr
}

func (c *Catalog) ensure() {
	_ = c.Load(context.Background())
}

func (c *Catalog) load(ctx context.Context) error {
	defs, err := c.source.Load(ctx)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("failed to load card catalog",
				zap.String("source", c.source.Name()),
				zap.Error(err),
			)
		}
		return fmt.Errorf("load catalog from %s: %w", c.source.Name(), err)
	}
	if err := Validate(defs); err != nil && c.logger != nil {
		c.logger.Warn("card catalog has invalid entries",
			zap.String("source", c.source.Name()),
			zap.Error(err),
		)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range defs {
		def := defs[i].Clone()
		if _, dup := c.byID[def.ID]; dup {
			continue
		}
		c.ordered = append(c.ordered, &def)
		c.byID[def.ID] = &def
		key := foldName(def.Name)
		if _, taken := c.byName[key]; !taken {
			c.byName[key] = &def
		}
	}

	if c.logger != nil {
		c.logger.Info("card catalog loaded",
			zap.String("source", c.source.Name()),
			zap.Int("cards", len(c.ordered)),
		)
	}
	return nil
}

func foldName(name string) string {
	return cases.Fold().String(name)
}

// Err returns the error of the initial load, if any.
func (c *Catalog) Err() error {
	c.ensure()
	return c.loadErr
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	c.ensure()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ordered)
}

// GetByID looks a definition up by id.
func (c *Catalog) GetByID(id int) (Definition, bool) {
	c.ensure()
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.byID[id]
	if !ok {
		return Definition{}, false
	}
	return def.Clone(), true
}

// GetByName looks a definition up by case-insensitive name.
func (c *Catalog) GetByName(name string) (Definition, bool) {
	c.ensure()
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.byName[foldName(name)]
	if !ok {
		return Definition{}, false
	}
	return def.Clone(), true
}

// Filter returns every definition matching the query, in catalog order.
func (c *Catalog) Filter(q Query) []Definition {
	c.ensure()
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Definition
	for _, def := range c.ordered {
		if q.Matches(def) {
			out = append(out, def.Clone())
		}
	}
	return out
}

// FilterFunc returns every definition accepted by match.
func (c *Catalog) FilterFunc(match func(*Definition) bool) []Definition {
	c.ensure()
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Definition
	for _, def := range c.ordered {
		if match(def) {
			out = append(out, def.Clone())
		}
	}
	return out
}

// GetByType returns collectible definitions of the given card type.
func (c *Catalog) GetByType(t CardType) []Definition {
	return c.Filter(Query{Type: t})
}

// GetByClass returns collectible definitions of the given class.
func (c *Catalog) GetByClass(class Class) []Definition {
	return c.Filter(Query{Class: class})
}

// GetByRarity returns collectible definitions of the given rarity.
func (c *Catalog) GetByRarity(r Rarity) []Definition {
	return c.Filter(Query{Rarity: r})
}

// All returns every definition including tokens.
func (c *Catalog) All() []Definition {
	return c.Filter(Query{AllowToken: true})
}
