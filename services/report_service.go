package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
)

// ReportService mengagregasi sesi yang sudah terminated dan paid dalam
// rentang tanggal. Read-only; field sesi terminated dijamin immutable
// oleh Session Manager.
type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

type PackageSales struct {
	PackageID   uint    `json:"package_id"`
	PackageName string  `json:"package_name"`
	Sessions    int64   `json:"sessions"`
	Customers   int64   `json:"customers"`
	Revenue     float64 `json:"revenue"`
}

type SalesSummary struct {
	From          time.Time      `json:"from"`
	To            time.Time      `json:"to"`
	SessionCount  int64          `json:"session_count"`
	CustomerCount int64          `json:"customer_count"`
	Revenue       float64        `json:"revenue"`
	Packages      []PackageSales `json:"packages"`
}

// SalesSummary -> ringkasan penjualan sesi completed+paid dalam rentang
func (rs *ReportService) SalesSummary(from, to time.Time) (*SalesSummary, error) {
	summary := &SalesSummary{From: from, To: to}

	base := rs.DB.Model(&models.Order{}).
		Where("status = ? AND payment_status = ? AND terminated_at BETWEEN ? AND ?",
			models.OrderCompleted, models.PaymentPaid, from, to)

	if err := base.Count(&summary.SessionCount).Error; err != nil {
		return nil, err
	}
	row := rs.DB.Model(&models.Order{}).
		Where("status = ? AND payment_status = ? AND terminated_at BETWEEN ? AND ?",
			models.OrderCompleted, models.PaymentPaid, from, to).
		Select("COALESCE(SUM(customer_count), 0), COALESCE(SUM(total_price), 0)").
		Row()
	if err := row.Scan(&summary.CustomerCount, &summary.Revenue); err != nil {
		return nil, err
	}

	err := rs.DB.Raw(`
		SELECT p.id as package_id, p.name as package_name,
		COUNT(o.id) as sessions,
		COALESCE(SUM(o.customer_count), 0) as customers,
		COALESCE(SUM(o.total_price), 0) as revenue
		FROM orders o
		JOIN packages p ON o.package_id = p.id
		WHERE o.status = ? AND o.payment_status = ? AND o.terminated_at BETWEEN ? AND ?
		GROUP BY p.id, p.name
		ORDER BY revenue DESC
	`, models.OrderCompleted, models.PaymentPaid, from, to).Scan(&summary.Packages).Error
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// ReceiptLine -> satu baris historis di struk sesi terminated
type ReceiptLine struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Subtotal float64 `json:"subtotal"`
}

type Receipt struct {
	Order       models.Order  `json:"order"`
	PackageLine ReceiptLine   `json:"package_line"`
	Items       []ReceiptLine `json:"items"`
	Addons      []ReceiptLine `json:"addons"`
	Total       float64       `json:"total"`
}

// BuildReceipt menyusun struk dari sesi yang sudah terminated: paket per
// customer plus baris ledger historis (preparing/served) yang selamat
// dari sweep.
func (rs *ReportService) BuildReceipt(orderID uint) (*Receipt, error) {
	var order models.Order
	err := rs.DB.Preload("Table").Preload("Package").
		Preload("OrderItems").Preload("OrderItems.Menu").
		Preload("OrderAddons").Preload("OrderAddons.Addon").
		First(&order, orderID).Error
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		Order: order,
		PackageLine: ReceiptLine{
			Name:     order.Package.Name,
			Quantity: order.CustomerCount,
			Price:    order.Package.Price,
			Subtotal: float64(order.CustomerCount) * order.Package.Price,
		},
		Total: order.TotalPrice,
	}
	for _, item := range order.OrderItems {
		receipt.Items = append(receipt.Items, ReceiptLine{
			Name:     item.Menu.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: 0, // tercakup paket
		})
	}
	for _, addon := range order.OrderAddons {
		receipt.Addons = append(receipt.Addons, ReceiptLine{
			Name:     addon.Addon.Name,
			Quantity: addon.Quantity,
			Price:    addon.Price,
			Subtotal: float64(addon.Quantity) * addon.Price,
		})
	}
	return receipt, nil
}
