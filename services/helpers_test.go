package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stock-portfolio/database/dbtest"
	"stock-portfolio/models"
)

const testUserID = "user123"

var testDay = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

type fakePrices struct {
	mu     sync.Mutex
	prices map[string]float64
	errs   map[string]error
	calls  map[string]int
}

func newFakePrices(prices map[string]float64) *fakePrices {
	return &fakePrices{
		prices: prices,
		errs:   map[string]error{},
		calls:  map[string]int{},
	}
}

func (f *fakePrices) Price(_ context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[symbol]++
	if err, ok := f.errs[symbol]; ok {
		return 0, err
	}
	return f.prices[symbol], nil
}

func (f *fakePrices) callCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

func seedUser(t *testing.T, db *gorm.DB, userID string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{UserID: userID, Username: "user", Email: userID + "@example.com", Password: string(hash)}).Error)
}

func newTestPortfolio(t *testing.T, prices map[string]float64) (*PortfolioService, *fakePrices, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t)
	seedUser(t, db, testUserID)
	fp := newFakePrices(prices)
	svc := NewPortfolioService(db, fp, zerolog.Nop())
	svc.ledger.now = func() time.Time { return testDay }
	return svc, fp, db
}

func allRows(t *testing.T, db *gorm.DB, userID, symbol string) []models.Position {
	t.Helper()
	var rows []models.Position
	require.NoError(t, db.Where("user_id = ? AND symbol = ?", userID, symbol).Order("id").Find(&rows).Error)
	return rows
}

func currentRows(rows []models.Position) []models.Position {
	var out []models.Position
	for _, r := range rows {
		if !r.IsExpired {
			out = append(out, r)
		}
	}
	return out
}

func requireKind(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "unexpected error: %v", err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, msg, e.Message)
}
