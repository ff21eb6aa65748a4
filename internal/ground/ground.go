package ground

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"

	"stranded/server/internal/inv"
	"stranded/server/internal/item"
	"stranded/server/logging"
	"stranded/server/logging/economy"
)

const (
	scatterMinDistance = 0.1
	scatterMaxDistance = 0.35
)

// Item is a detached stack lying in the world, waiting to be picked up.
type Item struct {
	ID         string  `json:"id"`
	DefID      string  `json:"defId"`
	Amount     int     `json:"qty"`
	Durability float64 `json:"durability"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`

	tile TileKey
}

// TileKey addresses one tile of the ground grid.
type TileKey struct {
	X int
	Y int
}

// Field tracks every ground item, indexed by id and by tile so drops can
// merge with stacks already lying nearby.
type Field struct {
	mu       sync.Mutex
	tileSize float64
	items    map[string]*Item
	byTile   map[TileKey]map[string]*Item
	rng      *rand.Rand
	pub      logging.Publisher
}

// NewField builds an empty field. tileSize controls merge granularity; the
// seed makes scatter positions reproducible.
func NewField(tileSize float64, seed int64, pub logging.Publisher) *Field {
	if tileSize <= 0 {
		tileSize = 40
	}
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Field{
		tileSize: tileSize,
		items:    make(map[string]*Item),
		byTile:   make(map[TileKey]map[string]*Item),
		rng:      rand.New(rand.NewSource(seed)),
		pub:      pub,
	}
}

// TileFor returns the tile containing the given position.
func (f *Field) TileFor(x, y float64) TileKey {
	return TileKey{
		X: int(math.Floor(x / f.tileSize)),
		Y: int(math.Floor(y / f.tileSize)),
	}
}

// Drop places a detached stack on the ground near (x, y). Durability-less
// stacks merge into an existing ground item of the same definition on the
// tile; durability-bearing stacks always become their own ground item.
// Returns the ground item holding the dropped units, or nil for an empty
// stack.
func (f *Field) Drop(ctx context.Context, tick uint64, actorID string, x, y float64, stack *inv.Stack, reason string) *Item {
	if f == nil || stack.IsEmpty() {
		return nil
	}
	def := stack.Def()

	f.mu.Lock()
	tile := f.TileFor(x, y)

	var target *Item
	if !stack.HasDurability() {
		for _, existing := range f.byTile[tile] {
			if existing.DefID == def.ID && existing.Durability < 0 {
				target = existing
				break
			}
		}
	}

	if target != nil {
		target.Amount += stack.Amount()
	} else {
		px, py := f.scatter(x, y)
		target = &Item{
			ID:         uuid.NewString(),
			DefID:      def.ID,
			Amount:     stack.Amount(),
			Durability: stack.Durability(),
			X:          px,
			Y:          py,
			tile:       tile,
		}
		f.items[target.ID] = target
		bucket := f.byTile[tile]
		if bucket == nil {
			bucket = make(map[string]*Item)
			f.byTile[tile] = bucket
		}
		bucket[target.ID] = target
	}
	f.mu.Unlock()

	economy.ItemDropped(ctx, f.pub, tick, logging.EntityRef{ID: actorID, Kind: logging.EntityKindPlayer}, economy.ItemPayload{
		ItemID:   def.ID,
		Quantity: stack.Amount(),
		Reason:   reason,
	})
	return target
}

// PickUp moves a ground item into the target inventory through the catalog
// lookup. Units that do not fit stay on the ground; the item disappears only
// when fully collected. Returns the amount actually collected.
func (f *Field) PickUp(ctx context.Context, tick uint64, actorID, itemID string, target *inv.Inventory, catalog *item.Catalog) int {
	if f == nil || target == nil || catalog == nil {
		return 0
	}

	f.mu.Lock()
	entry, ok := f.items[itemID]
	if !ok {
		f.mu.Unlock()
		return 0
	}
	def, ok := catalog.Lookup(entry.DefID)
	if !ok {
		f.mu.Unlock()
		return 0
	}

	overflow := target.AddItem(def, entry.Amount, entry.Durability)
	collected := entry.Amount - overflow
	if overflow == 0 {
		f.removeLocked(entry)
	} else {
		entry.Amount = overflow
	}
	f.mu.Unlock()

	actor := logging.EntityRef{ID: actorID, Kind: logging.EntityKindPlayer}
	if collected > 0 {
		economy.ItemPickedUp(ctx, f.pub, tick, actor, economy.ItemPayload{ItemID: entry.DefID, Quantity: collected})
	}
	if overflow > 0 {
		economy.ItemPickupFailed(ctx, f.pub, tick, actor, economy.ItemPayload{
			ItemID:   entry.DefID,
			Quantity: overflow,
			Reason:   "inventory_full",
		})
	}
	return collected
}

// ItemsInRadius returns the ids of ground items within radius of (x, y).
func (f *Field) ItemsInRadius(x, y, radius float64) []string {
	if f == nil || radius <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, 4)
	for id, entry := range f.items {
		dx := entry.X - x
		dy := entry.Y - y
		if dx*dx+dy*dy <= radius*radius {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a copy of every ground item, ordered by id for stable
// broadcasting.
func (f *Field) Snapshot() []Item {
	if f == nil {
		return make([]Item, 0)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]Item, 0, len(f.items))
	for _, entry := range f.items {
		items = append(items, *entry)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// Len reports the number of ground items.
func (f *Field) Len() int {
	if f == nil {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *Field) removeLocked(entry *Item) {
	delete(f.items, entry.ID)
	if bucket := f.byTile[entry.tile]; bucket != nil {
		delete(bucket, entry.ID)
		if len(bucket) == 0 {
			delete(f.byTile, entry.tile)
		}
	}
}

// scatter nudges a drop position away from the actor so stacks do not pile
// on one pixel.
func (f *Field) scatter(x, y float64) (float64, float64) {
	angle := f.rng.Float64() * 2 * math.Pi
	min := f.tileSize * scatterMinDistance
	max := f.tileSize * scatterMaxDistance
	distance := min + f.rng.Float64()*(max-min)
	return x + math.Cos(angle)*distance, y + math.Sin(angle)*distance
}
