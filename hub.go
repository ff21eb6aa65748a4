package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"stranded/server/internal/ground"
	"stranded/server/internal/inv"
	"stranded/server/internal/item"
	"stranded/server/internal/storage"
	"stranded/server/logging"
	"stranded/server/logging/economy"
)

const (
	playerSlotCount = 12
	playerMaxWeight = 60.0
	pickupRadius    = 48.0
	toolWearPerUse  = 4.0
)

// Hub owns every connected player, their inventories, and the shared ground
// field. All inventory mutation funnels through HandleCommand under one
// mutex, which satisfies the single-writer requirement of the model.
type Hub struct {
	mu          sync.Mutex
	players     map[string]*playerState
	subscribers map[string]*subscriber
	nextID      atomic.Uint64
	tick        atomic.Uint64

	catalog   *item.Catalog
	field     *ground.Field
	publisher logging.Publisher
	repo      *storage.InventoryRepository
	log       *logrus.Logger

	// slot changes collected from model observers during the current
	// command, flushed into the next broadcast.
	pendingSlots []slotChange
}

type playerState struct {
	ID        string
	X         float64
	Y         float64
	Inventory *inv.Inventory
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newHub(catalog *item.Catalog, field *ground.Field, publisher logging.Publisher, repo *storage.InventoryRepository, log *logrus.Logger) *Hub {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	if log == nil {
		log = logrus.New()
	}
	return &Hub{
		players:     make(map[string]*playerState),
		subscribers: make(map[string]*subscriber),
		catalog:     catalog,
		field:       field,
		publisher:   publisher,
		repo:        repo,
		log:         log,
	}
}

// Join registers a new player, restoring a saved inventory when one exists,
// and returns the join snapshot.
func (h *Hub) Join() joinResponse {
	id := h.nextID.Add(1)
	playerID := fmt.Sprintf("player-%d", id)

	inventory := h.restoreOrSeedInventory(playerID)

	player := &playerState{
		ID:        playerID,
		X:         80,
		Y:         80,
		Inventory: inventory,
	}
	inventory.Subscribe(&inv.ObserverFuncs{
		OnSlotChanged: func(slot int) {
			h.pendingSlots = append(h.pendingSlots, slotChange{PlayerID: playerID, Slot: slot})
		},
	})

	h.mu.Lock()
	h.players[playerID] = player
	snapshot := h.snapshotLocked()
	h.mu.Unlock()

	go h.broadcastState(snapshot, nil)

	return joinResponse{
		ID:          playerID,
		SlotCount:   playerSlotCount,
		MaxWeight:   playerMaxWeight,
		Players:     snapshot.Players,
		GroundItems: snapshot.GroundItems,
	}
}

func (h *Hub) restoreOrSeedInventory(playerID string) *inv.Inventory {
	if h.repo != nil {
		saved, err := h.repo.Load(context.Background(), playerID, h.catalog)
		if err == nil {
			return saved
		}
		if !isNotFound(err) {
			h.log.WithError(err).WithField("player", playerID).Warn("discarding corrupt inventory save")
		}
	}

	inventory := inv.NewInventory(playerSlotCount, playerMaxWeight)
	seed := []struct {
		id     string
		amount int
	}{
		{"wood", 10},
		{"berries", 5},
	}
	for _, entry := range seed {
		def, ok := h.catalog.Lookup(entry.id)
		if !ok {
			h.log.WithField("item", entry.id).Warn("starter item missing from catalog")
			continue
		}
		inventory.AddItem(def, entry.amount, inv.NoDurability)
	}
	if axe, ok := h.catalog.Lookup("stone_axe"); ok {
		inventory.AddItem(axe, 1, axe.DurabilityMax)
	}
	return inventory
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

// Subscribe associates a WebSocket connection with an existing player.
func (h *Hub) Subscribe(playerID string, conn *websocket.Conn) (*subscriber, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.players[playerID]; !ok {
		return nil, false
	}
	if existing, ok := h.subscribers[playerID]; ok {
		existing.conn.Close()
	}
	sub := &subscriber{conn: conn}
	h.subscribers[playerID] = sub
	return sub, true
}

// Disconnect removes a player, persisting their inventory when a repository
// is configured.
func (h *Hub) Disconnect(playerID string) {
	h.mu.Lock()
	sub := h.subscribers[playerID]
	delete(h.subscribers, playerID)
	player := h.players[playerID]
	delete(h.players, playerID)
	snapshot := h.snapshotLocked()
	h.mu.Unlock()

	if sub != nil {
		sub.conn.Close()
	}
	if player != nil && h.repo != nil {
		if err := h.repo.Save(context.Background(), playerID, player.Inventory); err != nil {
			h.log.WithError(err).WithField("player", playerID).Error("failed to persist inventory")
		}
	}
	h.broadcastState(snapshot, nil)
}

// HandleCommand applies one inventory command for playerID and broadcasts
// the resulting state. Unknown commands and commands for unknown players are
// ignored.
func (h *Hub) HandleCommand(playerID string, cmd clientCommand) {
	tick := h.tick.Add(1)
	ctx := context.Background()
	actor := logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer}

	h.mu.Lock()
	player, ok := h.players[playerID]
	if !ok {
		h.mu.Unlock()
		return
	}
	h.pendingSlots = h.pendingSlots[:0]

	switch cmd.Type {
	case commandMoveSlot:
		player.Inventory.MoveSlot(cmd.From, cmd.To)

	case commandSplitSlot:
		fromStack := player.Inventory.Slot(cmd.Slot)
		if player.Inventory.SplitSlot(cmd.Slot, cmd.Amount) {
			toSlot := -1
			// The split lands in what was the lowest empty slot; find it by
			// matching the pending notifications.
			for _, change := range h.pendingSlots {
				if change.Slot != cmd.Slot {
					toSlot = change.Slot
				}
			}
			economy.StackSplit(ctx, h.publisher, tick, actor, economy.SplitPayload{
				ItemID:      fromStack.Def().ID,
				FromSlot:    cmd.Slot,
				ToSlot:      toSlot,
				SplitAmount: cmd.Amount,
			})
		}

	case commandDropSlot:
		detached := player.Inventory.RemoveFromSlot(cmd.Slot, cmd.Amount)
		if detached != nil {
			h.field.Drop(ctx, tick, playerID, player.X, player.Y, detached, "drop_slot")
		}

	case commandGather:
		def, found := h.catalog.Lookup(cmd.ItemID)
		if !found || cmd.Amount <= 0 {
			break
		}
		durability := inv.NoDurability
		if def.HasDurability {
			durability = def.DurabilityMax
		}
		overflow := player.Inventory.AddItem(def, cmd.Amount, durability)
		if granted := cmd.Amount - overflow; granted > 0 {
			economy.ItemGranted(ctx, h.publisher, tick, actor, economy.ItemPayload{
				ItemID:   def.ID,
				Quantity: granted,
				Reason:   "gather",
			})
		}
		if overflow > 0 {
			economy.ItemGrantOverflow(ctx, h.publisher, tick, actor, economy.ItemPayload{
				ItemID:   def.ID,
				Quantity: overflow,
				Reason:   "inventory_full",
			})
			// Units that found no slot spill onto the ground instead of
			// vanishing. NewStack caps at MaxStack, so spill in stack-sized
			// chunks; same-tile drops merge back into one ground item.
			for remaining := overflow; remaining > 0; {
				chunk := remaining
				if chunk > def.MaxStack {
					chunk = def.MaxStack
				}
				spill := inv.NewStack(def, chunk, durability)
				h.field.Drop(ctx, tick, playerID, player.X, player.Y, spill, "gather_overflow")
				remaining -= chunk
			}
		}

	case commandPickup:
		for _, groundID := range h.resolvePickupTargets(player, cmd.ItemID) {
			h.field.PickUp(ctx, tick, playerID, groundID, player.Inventory, h.catalog)
		}

	case commandUseTool:
		stack := player.Inventory.Slot(cmd.Slot)
		if stack == nil || !stack.HasDurability() {
			break
		}
		if stack.ReduceDurability(toolWearPerUse) {
			broken := player.Inventory.RemoveSlot(cmd.Slot)
			if broken != nil {
				economy.ToolBroke(ctx, h.publisher, tick, actor, economy.ItemPayload{
					ItemID:   broken.Def().ID,
					Quantity: broken.Amount(),
				})
			}
		} else {
			// Durability is stack state, not slot shape; surface it to
			// subscribers as a slot change.
			h.pendingSlots = append(h.pendingSlots, slotChange{PlayerID: playerID, Slot: cmd.Slot})
		}

	default:
		h.log.WithFields(logrus.Fields{"player": playerID, "command": cmd.Type}).Debug("ignoring unknown command")
	}

	changed := append([]slotChange(nil), h.pendingSlots...)
	snapshot := h.snapshotLocked()
	h.mu.Unlock()

	h.broadcastState(snapshot, changed)
}

// resolvePickupTargets maps a pickup command to concrete ground item ids:
// an explicit id when given, otherwise everything within pickup range.
func (h *Hub) resolvePickupTargets(player *playerState, itemID string) []string {
	if itemID != "" {
		return []string{itemID}
	}
	return h.field.ItemsInRadius(player.X, player.Y, pickupRadius)
}

type hubSnapshot struct {
	Players     []playerSnapshot
	GroundItems []ground.Item
}

func (h *Hub) snapshotLocked() hubSnapshot {
	players := make([]playerSnapshot, 0, len(h.players))
	for _, player := range h.players {
		players = append(players, snapshotPlayer(player))
	}
	sortPlayerSnapshots(players)
	return hubSnapshot{
		Players:     players,
		GroundItems: h.field.Snapshot(),
	}
}

func snapshotPlayer(player *playerState) playerSnapshot {
	inventory := player.Inventory
	slots := make([]slotSnapshot, 0, inventory.UsedSlots())
	for i := 0; i < inventory.SlotCount(); i++ {
		stack := inventory.Slot(i)
		if stack == nil {
			continue
		}
		slots = append(slots, slotSnapshot{
			Slot:       i,
			ItemID:     stack.Def().ID,
			Quantity:   stack.Amount(),
			Durability: stack.Durability(),
		})
	}
	return playerSnapshot{
		ID:         player.ID,
		Slots:      slots,
		Weight:     inventory.CurrentWeight(),
		OverWeight: inventory.IsOverWeight(),
	}
}

func sortPlayerSnapshots(players []playerSnapshot) {
	for i := 1; i < len(players); i++ {
		for j := i; j > 0 && players[j-1].ID > players[j].ID; j-- {
			players[j-1], players[j] = players[j], players[j-1]
		}
	}
}

func (h *Hub) broadcastState(snapshot hubSnapshot, changed []slotChange) {
	message := stateMessage{
		Type:         "state",
		Players:      snapshot.Players,
		GroundItems:  snapshot.GroundItems,
		ChangedSlots: changed,
		Tick:         h.tick.Load(),
		ServerTime:   time.Now().UnixMilli(),
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteJSON(message); err != nil {
			h.log.WithError(err).Debug("dropping slow subscriber write")
		}
		sub.mu.Unlock()
	}
}
