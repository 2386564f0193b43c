package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
)

var (
	// ErrUnknownPool is returned when no pool is registered under the id.
	ErrUnknownPool = errors.New("unknown discovery pool")
	// ErrEmptyPool is returned when a pool has no candidates.
	ErrEmptyPool = errors.New("discovery pool is empty")
)

// PoolRegistry maps discovery pool ids to catalog queries.
type PoolRegistry struct {
	catalog *Catalog

	mu    sync.RWMutex
	pools map[string]Query
}

// NewPoolRegistry registers the default pools: one per race, per card type,
// per class (class_<name>), plus legendary, taunt, deathrattle and battlecry.
func NewPoolRegistry(c *Catalog) *PoolRegistry {
	r := &PoolRegistry{catalog: c, pools: make(map[string]Query)}
	for _, race := range []Race{RaceBeast, RaceDragon, RaceElemental, RaceMech, RaceMurloc, RaceDemon, RacePirate, RaceTotem, RaceUndead, RaceNaga} {
		r.Register(string(race), Query{Type: TypeMinion, Race: race})
	}
	for _, t := range []CardType{TypeMinion, TypeSpell, TypeWeapon} {
		r.Register(string(t), Query{Type: t})
	}
	for _, class := range []Class{ClassNeutral, ClassWarrior, ClassMage, ClassHunter, ClassPaladin, ClassPriest, ClassRogue, ClassShaman, ClassWarlock, ClassDruid, ClassDeathKnight, ClassDemonHunter} {
		r.Register("class_"+string(class), Query{Class: class})
	}
	r.Register("legendary", Query{Rarity: RarityLegendary})
	r.Register("taunt", Query{Type: TypeMinion, Keyword: KeywordTaunt})
	r.Register("deathrattle", Query{Type: TypeMinion, Keyword: KeywordDeathrattle})
	r.Register("battlecry", Query{Type: TypeMinion, Keyword: KeywordBattlecry})
	return r
}

// Register adds or replaces a pool.
func (r *PoolRegistry) Register(id string, q Query) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[id] = q
}

// IDs returns the registered pool ids, sorted.
func (r *PoolRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.pools))
	for id := range r.pools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Candidates returns every definition in the pool.
func (r *PoolRegistry) Candidates(id string) ([]Definition, error) {
	r.mu.RLock()
	q, ok := r.pools[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPool, id)
	}
	return r.catalog.Filter(q), nil
}

// Sample draws up to n distinct definitions from the pool.
func (r *PoolRegistry) Sample(id string, n int, rng *rand.Rand) ([]Definition, error) {
	candidates, err := r.Candidates(id)
	if err != nil {
		return nil, err
	}
	return SampleDistinct(candidates, n, rng)
}

// SampleQuery draws up to n distinct definitions matching q.
func (r *PoolRegistry) SampleQuery(q Query, n int, rng *rand.Rand) ([]Definition, error) {
	return SampleDistinct(r.catalog.Filter(q), n, rng)
}

// SampleDistinct picks min(n, len(candidates)) entries without repetition
// using a partial Fisher-Yates shuffle. The input slice is reordered.
func SampleDistinct(candidates []Definition, n int, rng *rand.Rand) ([]Definition, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyPool
	}
	if n > len(candidates) {
		n = len(candidates)
	}
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return candidates[:n], nil
}
