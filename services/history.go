package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"stock-portfolio/models"
)

const (
	ActionAdded   = "Added"
	ActionRemoved = "Removed"
)

// StockHistory is one add or remove event in a user's change log.
type StockHistory struct {
	Symbol          string `json:"symbol"`
	PurchaseDate    string `json:"purchaseDate"`
	QuantityChanged int    `json:"quantityChanged"`
	Action          string `json:"action"`
}

type HistoryService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewHistoryService(db *gorm.DB, log zerolog.Logger) *HistoryService {
	return &HistoryService{
		db:  db,
		log: log.With().Str("component", "history").Logger(),
	}
}

// History returns every position row of the user, active and expired, in
// the order they were written.
func (s *HistoryService) History(ctx context.Context, userID string) ([]StockHistory, error) {
	var rows []models.Position
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load stock history: %w", err)
	}
	if len(rows) == 0 {
		s.log.Warn().Str("user_id", userID).Msg("no stock history")
		return nil, NotFoundf("No stock history found for user with ID: %s", userID)
	}

	history := make([]StockHistory, 0, len(rows))
	for _, row := range rows {
		history = append(history, historyEntry(row))
	}
	return history, nil
}

func historyEntry(row models.Position) StockHistory {
	entry := StockHistory{
		Symbol:       row.Symbol,
		PurchaseDate: row.PurchaseDate.Format("2006-01-02"),
	}
	if row.NewStockQuantity > 0 {
		entry.Action = ActionAdded
		entry.QuantityChanged = row.NewStockQuantity
	} else {
		entry.Action = ActionRemoved
		entry.QuantityChanged = row.RemovedStockQuantity
	}
	return entry
}
