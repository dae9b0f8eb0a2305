// Package domain holds the pure stock policy shared by the inventory
// service and the notifier: activity actions, lot statuses, and the
// status transition rules.
package domain

// Action is the kind of stock mutation recorded in the activity ledger.
type Action string

const (
	ActionRestock        Action = "restock"
	ActionSold           Action = "sold"
	ActionRemovedExpired Action = "removed_expired"
	ActionRemovedManual  Action = "removed_manual"
)

// Actions lists every valid action
func Actions() []Action {
	return []Action{ActionRestock, ActionSold, ActionRemovedExpired, ActionRemovedManual}
}

// IsValid reports whether the action is one of the known kinds
func (a Action) IsValid() bool {
	switch a {
	case ActionRestock, ActionSold, ActionRemovedExpired, ActionRemovedManual:
		return true
	}
	return false
}

// Delta returns the signed stock change for this action. Restock adds,
// every removal subtracts. The quantity must already be positive; sign
// derivation is the action's job, never the caller's.
func (a Action) Delta(quantity int) int {
	if a == ActionRestock {
		return quantity
	}
	return -quantity
}

// IsRemoval reports whether the action takes stock out of a lot
func (a Action) IsRemoval() bool {
	return a != ActionRestock
}

// String implements fmt.Stringer
func (a Action) String() string {
	return string(a)
}
