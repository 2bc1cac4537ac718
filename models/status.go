package models

// TableStatus -> available / occupied / inactive
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableInactive  TableStatus = "inactive"
)

// OrderStatus -> lifecycle sesi. pending dan active sama-sama "open";
// completed dan cancelled terminal dan tidak bisa dibuka lagi.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderActive    OrderStatus = "active"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsOpen() bool {
	return s == OrderPending || s == OrderActive
}

func (s OrderStatus) IsTerminated() bool {
	return s == OrderCompleted || s == OrderCancelled
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// ItemStatus -> state machine baris ledger:
// confirming -> pending -> preparing -> served, satu arah tanpa skip.
// Dapur bisa membatalkan dari pending/preparing ke cancelled; cancelled
// hanya dipakai item, bukan add-on.
type ItemStatus string

const (
	ItemConfirming ItemStatus = "confirming"
	ItemPending    ItemStatus = "pending"
	ItemPreparing  ItemStatus = "preparing"
	ItemServed     ItemStatus = "served"
	ItemCancelled  ItemStatus = "cancelled"
)

var itemTransitions = map[ItemStatus]ItemStatus{
	ItemConfirming: ItemPending,
	ItemPending:    ItemPreparing,
	ItemPreparing:  ItemServed,
}

// CanAdvanceTo -> true untuk langkah maju tunggal yang sah, atau
// pembatalan dapur dari pending/preparing
func (s ItemStatus) CanAdvanceTo(next ItemStatus) bool {
	if next == ItemCancelled {
		return s == ItemPending || s == ItemPreparing
	}
	allowed, ok := itemTransitions[s]
	return ok && allowed == next
}

// Historical -> baris yang bertahan melewati terminasi sesi
func (s ItemStatus) Historical() bool {
	return s == ItemPreparing || s == ItemServed
}
