package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusDraft     = "DRAFT"
	OrderStatusPaid      = "PAID"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCanceled  = "CANCELED"
)

// ValidOrderStatus reports whether s is one of the lifecycle statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusDraft, OrderStatusPaid, OrderStatusPreparing,
		OrderStatusReady, OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}

// ── Option group selection rules (CHECK constrained in DB) ──

const (
	SelectionTypeSingle = "SINGLE"
	SelectionTypeMulti  = "MULTI"
)
