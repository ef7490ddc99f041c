package models

import "time"

// Position is one lot event for a (user, symbol) pair. Rows are append-only:
// a later add or remove expires the current row and writes a new one.
type Position struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                string     `gorm:"size:64;not null;index:idx_positions_user_symbol,priority:1" json:"userId"`
	Symbol                string     `gorm:"size:16;not null;index:idx_positions_user_symbol,priority:2" json:"symbol"`
	ExistingStockQuantity int        `gorm:"not null" json:"existingStockQuantity"`
	NewStockQuantity      int        `gorm:"not null" json:"newStockQuantity"`
	RemovedStockQuantity  int        `gorm:"not null" json:"removedStockQuantity"`
	TotalStockQuantity    int        `gorm:"not null" json:"totalStockQuantity"`
	PurchaseDate          time.Time  `gorm:"type:date;not null" json:"purchaseDate"`
	Price                 float64    `gorm:"not null" json:"price"`
	IsExpired             bool       `gorm:"not null;index" json:"isExpired"`
	ExpiredDate           *time.Time `gorm:"type:date" json:"expiredDate,omitempty"`
	CreatedAt             time.Time  `json:"-"`
}

func (Position) TableName() string {
	return "positions"
}

// Expire marks the row as superseded on the given day.
func (p *Position) Expire(on time.Time) {
	p.IsExpired = true
	p.ExpiredDate = &on
}
