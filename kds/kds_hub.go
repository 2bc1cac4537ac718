package kds

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
)

// Event types
const (
	EventTableCreate     = "table_create"
	EventTableUpdate     = "table_update"
	EventTableDelete     = "table_delete"
	EventSessionOpen     = "session_open"
	EventSessionUpdate   = "session_update"
	EventSessionClosed   = "session_closed"
	EventItemUpdate      = "item_update"
	EventItemDelete      = "item_delete"
	EventAddonUpdate     = "addon_update"
	EventAddonDelete     = "addon_delete"
	EventTokenExpired    = "token_expired"
	EventStaffNotif      = "staff_notification"
	EventDashboardUpdate = "dashboard_update"
)

// Message -> satu event perubahan baris. OrderID/TableID dipakai filter
// subscription; 0 berarti event tidak terikat order/meja tertentu.
type Message struct {
	Event   string      `json:"event"`
	OrderID uint        `json:"order_id,omitempty"`
	TableID uint        `json:"table_id,omitempty"`
	Data    interface{} `json:"data"`
}

// Filter membatasi event yang diterima sebuah subscription.
// Zero value berarti terima semuanya (klien staff/kitchen/dashboard).
// Klien customer memakai OrderID sesinya sendiri.
type Filter struct {
	OrderID uint
	TableID uint
	Events  []string
}

func (f Filter) matches(msg Message) bool {
	if f.OrderID != 0 && msg.OrderID != f.OrderID {
		return false
	}
	if f.TableID != 0 && msg.TableID != f.TableID {
		return false
	}
	if len(f.Events) == 0 {
		return true
	}
	for _, ev := range f.Events {
		if ev == msg.Event {
			return true
		}
	}
	return false
}

type subscription struct {
	filter Filter
	ch     chan Message
}

// Hub menampung client websocket (staff, kitchen, admin, customer) dan
// subscriber in-process. Keduanya menerima event yang lolos filternya.
type Hub struct {
	clients map[*websocket.Conn]Filter
	subs    map[uint64]*subscription
	nextSub uint64
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]Filter),
	subs:    make(map[uint64]*subscription),
}

// RegisterClient -> menambahkan connection websocket dengan filternya
func RegisterClient(conn *websocket.Conn, filter Filter) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = filter
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// Subscribe -> stream in-process plus cancel. Cancel aman dipanggil
// berkali-kali dan di semua exit path; setelah cancel channel ditutup.
func Subscribe(filter Filter) (<-chan Message, func()) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	hub.nextSub++
	id := hub.nextSub
	sub := &subscription{filter: filter, ch: make(chan Message, 32)}
	hub.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			hub.mutex.Lock()
			defer hub.mutex.Unlock()
			delete(hub.subs, id)
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

func BroadcastTableCreate(table models.Table) {
	broadcast(Message{Event: EventTableCreate, TableID: table.ID, Data: table})
}

func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{Event: EventTableUpdate, TableID: table.ID, Data: table})
}

func BroadcastTableDelete(tableID uint) {
	broadcast(Message{Event: EventTableDelete, TableID: tableID, Data: map[string]interface{}{"table_id": tableID}})
}

// BroadcastSessionOpen -> sesi baru dibuka di sebuah meja
func BroadcastSessionOpen(order models.Order) {
	broadcast(Message{Event: EventSessionOpen, OrderID: order.ID, TableID: order.TableID, Data: order})
}

func BroadcastSessionUpdate(order models.Order) {
	broadcast(Message{Event: EventSessionUpdate, OrderID: order.ID, TableID: order.TableID, Data: order})
}

// BroadcastSessionClosed -> sesi berakhir (checkout atau dibatalkan)
func BroadcastSessionClosed(order models.Order) {
	broadcast(Message{Event: EventSessionClosed, OrderID: order.ID, TableID: order.TableID, Data: order})
}

func BroadcastItemUpdate(item models.OrderItem) {
	broadcast(Message{Event: EventItemUpdate, OrderID: item.OrderID, Data: item})
}

func BroadcastItemDelete(orderID, itemID uint) {
	broadcast(Message{Event: EventItemDelete, OrderID: orderID, Data: map[string]interface{}{"item_id": itemID}})
}

func BroadcastAddonUpdate(addon models.OrderAddon) {
	broadcast(Message{Event: EventAddonUpdate, OrderID: addon.OrderID, Data: addon})
}

func BroadcastAddonDelete(orderID, addonID uint) {
	broadcast(Message{Event: EventAddonDelete, OrderID: orderID, Data: map[string]interface{}{"order_addon_id": addonID}})
}

func BroadcastTokenExpired(qr models.QRCode) {
	broadcast(Message{Event: EventTokenExpired, OrderID: qr.OrderID, Data: qr})
}

// BroadcastStaffNotification -> notifikasi teks untuk konsol staff
func BroadcastStaffNotification(text string) {
	broadcast(Message{Event: EventStaffNotif, Data: text})
}

func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, filter := range hub.clients {
		if !filter.matches(msg) {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
		}
	}

	for _, sub := range hub.subs {
		if !sub.filter.matches(msg) {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			// subscriber lambat: event dijatuhkan, klien refetch saat
			// menyadari tertinggal (delivery at-least-once dari sisi store)
		}
	}
}
