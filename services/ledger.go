package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock-portfolio/models"
	"stock-portfolio/quotes"
)

const (
	msgRemoveExceedsHeld = "Cannot remove more stocks than currently held."
	msgQuantityTooLarge  = "Quantity exceeds the maximum that can be held."
)

// ledger applies expire-and-replace updates to a user's position rows.
type ledger struct {
	prices quotes.Provider
	now    func() time.Time
}

func (l *ledger) today() time.Time {
	y, m, d := l.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// applyDelta expires the current rows for (userID, symbol) and writes a new
// current row holding their summed quantity plus delta. It returns the new row
// and the quantity held before the change. It must run inside a transaction
// that holds the owning user's row lock.
func (l *ledger) applyDelta(ctx context.Context, tx *gorm.DB, userID, symbol string, delta int) (*models.Position, int, error) {
	var current []models.Position
	if err := tx.Where("user_id = ? AND symbol = ? AND is_expired = ?", userID, symbol, false).
		Order("id").
		Find(&current).Error; err != nil {
		return nil, 0, fmt.Errorf("load current positions: %w", err)
	}

	existing := 0
	for _, p := range current {
		if p.TotalStockQuantity > math.MaxInt-existing {
			return nil, existing, BadRequestf(msgQuantityTooLarge)
		}
		existing += p.TotalStockQuantity
	}

	if delta < 0 && existing < -delta {
		return nil, existing, BadRequestf(msgRemoveExceedsHeld)
	}
	if delta > 0 && existing > math.MaxInt-delta {
		return nil, existing, BadRequestf(msgQuantityTooLarge)
	}

	price, err := LookupPrice(ctx, l.prices, symbol)
	if err != nil {
		return nil, existing, err
	}

	today := l.today()
	for i := range current {
		if err := tx.Model(&current[i]).Updates(map[string]any{
			"is_expired":   true,
			"expired_date": today,
		}).Error; err != nil {
			return nil, existing, fmt.Errorf("expire position %d: %w", current[i].ID, err)
		}
	}

	row := &models.Position{
		UserID:                userID,
		Symbol:                symbol,
		ExistingStockQuantity: existing,
		TotalStockQuantity:    existing + delta,
		PurchaseDate:          today,
		Price:                 price,
	}
	if delta > 0 {
		row.NewStockQuantity = delta
	} else {
		row.RemovedStockQuantity = -delta
	}
	// a fully closed position leaves no current row behind
	if row.TotalStockQuantity == 0 {
		row.Expire(today)
	}

	if err := tx.Create(row).Error; err != nil {
		return nil, existing, fmt.Errorf("create position: %w", err)
	}
	return row, existing, nil
}

// lockUser loads the user with a row lock held until the transaction ends.
func lockUser(tx *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundf("User not found with ID: %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	return &user, nil
}

// LookupPrice fetches a quote and classifies failures as upstream errors.
func LookupPrice(ctx context.Context, prices quotes.Provider, symbol string) (float64, error) {
	price, err := prices.Price(ctx, symbol)
	if errors.Is(err, quotes.ErrNoData) {
		return 0, Upstream(err, "No data found for symbol: %s", symbol)
	}
	if err != nil {
		return 0, Upstream(err, "Price lookup failed for symbol: %s", symbol)
	}
	return price, nil
}
