package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stock-portfolio/database"
	"stock-portfolio/models"
	"stock-portfolio/quotes"
)

// UserStock is one priced active holding.
type UserStock struct {
	Symbol     string  `json:"symbol"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	TotalPrice float64 `json:"totalPrice"`
}

type PortfolioService struct {
	db     *gorm.DB
	prices quotes.Provider
	ledger *ledger
	log    zerolog.Logger
}

func NewPortfolioService(db *gorm.DB, prices quotes.Provider, log zerolog.Logger) *PortfolioService {
	return &PortfolioService{
		db:     db,
		prices: prices,
		ledger: &ledger{prices: prices, now: time.Now},
		log:    log.With().Str("component", "portfolio").Logger(),
	}
}

// AddOrUpdate adds quantity shares of symbol to the user's position and
// returns the new current row.
func (s *PortfolioService) AddOrUpdate(ctx context.Context, userID, symbol string, quantity int) (*models.Position, error) {
	symbol, err := validateStockInput(symbol, quantity)
	if err != nil {
		return nil, err
	}

	var row *models.Position
	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if _, err := lockUser(tx, userID); err != nil {
			return err
		}
		var err error
		row, _, err = s.ledger.applyDelta(ctx, tx, userID, symbol, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", userID).
		Str("symbol", symbol).
		Int("quantity", quantity).
		Int("total", row.TotalStockQuantity).
		Msg("stock added")
	return row, nil
}

// Remove takes quantity shares of symbol out of the user's position.
func (s *PortfolioService) Remove(ctx context.Context, userID, symbol string, quantity int) error {
	symbol, err := validateStockInput(symbol, quantity)
	if err != nil {
		return err
	}

	var row *models.Position
	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if _, err := lockUser(tx, userID); err != nil {
			return err
		}
		var err error
		row, _, err = s.ledger.applyDelta(ctx, tx, userID, symbol, -quantity)
		return err
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("user_id", userID).
		Str("symbol", symbol).
		Int("quantity", quantity).
		Int("total", row.TotalStockQuantity).
		Msg("stock removed")
	return nil
}

// ListActive prices every current row of the user.
func (s *PortfolioService) ListActive(ctx context.Context, userID string) ([]UserStock, error) {
	rows, err := s.activeRows(ctx, userID)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(rows))
	stocks := make([]UserStock, 0, len(rows))
	for _, row := range rows {
		price, err := s.priceOnce(ctx, prices, row.Symbol)
		if err != nil {
			return nil, err
		}
		total := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(row.TotalStockQuantity)))
		stocks = append(stocks, UserStock{
			Symbol:     row.Symbol,
			Quantity:   row.TotalStockQuantity,
			Price:      price,
			TotalPrice: total.InexactFloat64(),
		})
	}
	return stocks, nil
}

// PortfolioValue sums quantity times live price over the user's current rows.
// Each distinct symbol is priced once per call.
func (s *PortfolioService) PortfolioValue(ctx context.Context, userID string) (float64, error) {
	rows, err := s.activeRows(ctx, userID)
	if err != nil {
		return 0, err
	}

	prices := make(map[string]float64)
	total := decimal.Zero
	for _, row := range rows {
		price, err := s.priceOnce(ctx, prices, row.Symbol)
		if err != nil {
			return 0, err
		}
		total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(row.TotalStockQuantity))))
	}

	value := total.InexactFloat64()
	s.log.Info().Str("user_id", userID).Float64("value", value).Msg("calculated portfolio value")
	return value, nil
}

func (s *PortfolioService) activeRows(ctx context.Context, userID string) ([]models.Position, error) {
	var rows []models.Position
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_expired = ?", userID, false).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load active positions: %w", err)
	}
	if len(rows) == 0 {
		s.log.Warn().Str("user_id", userID).Msg("no active stocks")
		return nil, NotFoundf("No active stocks found for user with ID: %s", userID)
	}
	return rows, nil
}

func (s *PortfolioService) priceOnce(ctx context.Context, seen map[string]float64, symbol string) (float64, error) {
	if price, ok := seen[symbol]; ok {
		return price, nil
	}
	price, err := LookupPrice(ctx, s.prices, symbol)
	if err != nil {
		return 0, err
	}
	seen[symbol] = price
	return price, nil
}

func validateStockInput(symbol string, quantity int) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", BadRequestf("Symbol must not be empty.")
	}
	if quantity <= 0 {
		return "", BadRequestf("Quantity must be greater than zero.")
	}
	return symbol, nil
}
