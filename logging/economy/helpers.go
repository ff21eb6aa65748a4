package economy

import (
	"context"

	"stranded/server/logging"
)

const (
	// EventItemGranted is emitted when units are placed into an inventory.
	EventItemGranted logging.EventType = "economy.item_granted"
	// EventItemGrantOverflow is emitted when part of a grant found no slot.
	EventItemGrantOverflow logging.EventType = "economy.item_grant_overflow"
	// EventItemDropped is emitted when a stack leaves an inventory for the ground.
	EventItemDropped logging.EventType = "economy.item_dropped"
	// EventItemPickedUp is emitted when a ground item is collected.
	EventItemPickedUp logging.EventType = "economy.item_picked_up"
	// EventItemPickupFailed is emitted when a pickup attempt left units on the ground.
	EventItemPickupFailed logging.EventType = "economy.item_pickup_failed"
	// EventStackSplit is emitted when a slot is split inside an inventory.
	EventStackSplit logging.EventType = "economy.stack_split"
	// EventToolBroke is emitted when a durability-tracked item reaches zero.
	EventToolBroke logging.EventType = "economy.tool_broke"
)

// ItemPayload describes the item side of an economy event.
type ItemPayload struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason,omitempty"`
}

// SplitPayload describes a slot split.
type SplitPayload struct {
	ItemID      string `json:"itemId"`
	FromSlot    int    `json:"fromSlot"`
	ToSlot      int    `json:"toSlot"`
	SplitAmount int    `json:"splitAmount"`
}

// ItemGranted publishes a successful inventory grant.
func ItemGranted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ItemPayload) {
	publish(ctx, pub, EventItemGranted, tick, actor, logging.SeverityInfo, payload)
}

// ItemGrantOverflow publishes the portion of a grant that found no home.
func ItemGrantOverflow(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ItemPayload) {
	publish(ctx, pub, EventItemGrantOverflow, tick, actor, logging.SeverityWarn, payload)
}

// ItemDropped publishes a stack leaving an inventory for the ground.
func ItemDropped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ItemPayload) {
	publish(ctx, pub, EventItemDropped, tick, actor, logging.SeverityInfo, payload)
}

// ItemPickedUp publishes a collected ground item.
func ItemPickedUp(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ItemPayload) {
	publish(ctx, pub, EventItemPickedUp, tick, actor, logging.SeverityInfo, payload)
}

// ItemPickupFailed publishes a pickup that left units behind.
func ItemPickupFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ItemPayload) {
	publish(ctx, pub, EventItemPickupFailed, tick, actor, logging.SeverityWarn, payload)
}

// StackSplit publishes a slot split.
func StackSplit(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SplitPayload) {
	publish(ctx, pub, EventStackSplit, tick, actor, logging.SeverityInfo, payload)
}

// ToolBroke publishes a durability-tracked item reaching zero.
func ToolBroke(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ItemPayload) {
	publish(ctx, pub, EventToolBroke, tick, actor, logging.SeverityInfo, payload)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, actor logging.EntityRef, severity logging.Severity, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}
