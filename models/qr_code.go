package models

import "time"

// QRCode -> kredensial akses per-sesi (payload QR di meja). Valid hanya
// jika order pemiliknya masih open DAN ExpiredAt nil atau masih di masa
// depan. Terminate men-stamp ExpiredAt, tidak menghapus barisnya, supaya
// gate berikutnya membaca "expired" tanpa background sweeper.
type QRCode struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	OrderID   uint       `gorm:"not null;uniqueIndex" json:"order_id"`
	Order     Order      `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Code      string     `gorm:"type:varchar(100);not null;uniqueIndex" json:"code"`
	ExpiredAt *time.Time `json:"expired_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

// Expired -> cek stempel waktu saja; validitas sesi dicek terpisah
func (q *QRCode) Expired(now time.Time) bool {
	return q.ExpiredAt != nil && !q.ExpiredAt.After(now)
}
