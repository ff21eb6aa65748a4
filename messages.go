package main

import "stranded/server/internal/ground"

type slotSnapshot struct {
	Slot       int     `json:"slot"`
	ItemID     string  `json:"item"`
	Quantity   int     `json:"qty"`
	Durability float64 `json:"durability"`
}

type playerSnapshot struct {
	ID         string         `json:"id"`
	Slots      []slotSnapshot `json:"slots"`
	Weight     float64        `json:"weight"`
	OverWeight bool           `json:"overWeight"`
}

type slotChange struct {
	PlayerID string `json:"playerId"`
	Slot     int    `json:"slot"`
}

type joinResponse struct {
	ID          string           `json:"id"`
	SlotCount   int              `json:"slotCount"`
	MaxWeight   float64          `json:"maxWeight"`
	Players     []playerSnapshot `json:"players"`
	GroundItems []ground.Item    `json:"groundItems"`
}

type stateMessage struct {
	Type         string           `json:"type"`
	Players      []playerSnapshot `json:"players"`
	GroundItems  []ground.Item    `json:"groundItems"`
	ChangedSlots []slotChange     `json:"changedSlots,omitempty"`
	Tick         uint64           `json:"t"`
	ServerTime   int64            `json:"serverTime"`
}

// clientCommand is the single envelope for every inventory action a client
// may request over the socket.
type clientCommand struct {
	Type string `json:"type"`
	// move_slot
	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`
	// split_slot, drop_slot, use_tool
	Slot   int `json:"slot,omitempty"`
	Amount int `json:"amount,omitempty"`
	// gather (definition id), pickup (ground item id)
	ItemID string  `json:"itemId,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
}

const (
	commandMoveSlot  = "move_slot"
	commandSplitSlot = "split_slot"
	commandDropSlot  = "drop_slot"
	commandGather    = "gather"
	commandPickup    = "pickup"
	commandUseTool   = "use_tool"
)
