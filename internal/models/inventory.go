package models

import (
	"time"
)

// ExpiringSoonDays is the window used for the expiring-soon alert state
const ExpiringSoonDays = 30

// InventoryItem represents a stocked clinic supply. Alert states (low stock,
// out of stock, expired, expiring soon) are derived, never stored.
type InventoryItem struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"not null;index" json:"name"`
	Category     *string    `gorm:"index" json:"category"`
	Supplier     *string    `json:"supplier"`
	Quantity     int        `gorm:"not null;default:0" json:"quantity"`
	MinimumStock int        `gorm:"not null;default:0" json:"minimum_stock"`
	CostPerUnit  float64    `gorm:"type:decimal(10,2);not null;default:0" json:"cost_per_unit"`
	ExpiryDate   *time.Time `gorm:"type:date;index" json:"expiry_date"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for InventoryItem
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// IsOutOfStock returns true when the item has no remaining quantity
func (i *InventoryItem) IsOutOfStock() bool {
	return i.Quantity == 0
}

// IsLowStock returns true when 0 < quantity <= minimum stock
func (i *InventoryItem) IsLowStock() bool {
	return i.Quantity > 0 && i.Quantity <= i.MinimumStock
}

// IsExpired returns true when the expiry date is in the past
func (i *InventoryItem) IsExpired() bool {
	return i.ExpiryDate != nil && i.ExpiryDate.Before(time.Now())
}

// IsExpiringSoon returns true when the item expires within ExpiringSoonDays
func (i *InventoryItem) IsExpiringSoon() bool {
	if i.ExpiryDate == nil || i.IsExpired() {
		return false
	}
	days := int(time.Until(*i.ExpiryDate).Hours() / 24)
	return days >= 0 && days <= ExpiringSoonDays
}

// StockValue returns quantity × cost per unit (valuation, not consumption)
func (i *InventoryItem) StockValue() float64 {
	return float64(i.Quantity) * i.CostPerUnit
}

// InventoryItemResponse is the JSON response format for inventory items
type InventoryItemResponse struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Category     *string    `json:"category,omitempty"`
	Supplier     *string    `json:"supplier,omitempty"`
	Quantity     int        `json:"quantity"`
	MinimumStock int        `json:"minimum_stock"`
	CostPerUnit  float64    `json:"cost_per_unit"`
	StockValue   float64    `json:"stock_value"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	LowStock     bool       `json:"low_stock"`
	OutOfStock   bool       `json:"out_of_stock"`
	Expired      bool       `json:"expired"`
	ExpiringSoon bool       `json:"expiring_soon"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToResponse converts InventoryItem to InventoryItemResponse
func (i *InventoryItem) ToResponse() InventoryItemResponse {
	return InventoryItemResponse{
		ID:           i.ID,
		Name:         i.Name,
		Category:     i.Category,
		Supplier:     i.Supplier,
		Quantity:     i.Quantity,
		MinimumStock: i.MinimumStock,
		CostPerUnit:  i.CostPerUnit,
		StockValue:   i.StockValue(),
		ExpiryDate:   i.ExpiryDate,
		LowStock:     i.IsLowStock(),
		OutOfStock:   i.IsOutOfStock(),
		Expired:      i.IsExpired(),
		ExpiringSoon: i.IsExpiringSoon(),
		CreatedAt:    i.CreatedAt,
	}
}

// StockAlerts groups the derived alert states over the full inventory
type StockAlerts struct {
	LowStock     []InventoryItemResponse `json:"low_stock"`
	OutOfStock   []InventoryItemResponse `json:"out_of_stock"`
	Expired      []InventoryItemResponse `json:"expired"`
	ExpiringSoon []InventoryItemResponse `json:"expiring_soon"`
}

// HasAlerts returns true when any alert bucket is non-empty
func (s *StockAlerts) HasAlerts() bool {
	return len(s.LowStock) > 0 || len(s.OutOfStock) > 0 ||
		len(s.Expired) > 0 || len(s.ExpiringSoon) > 0
}
