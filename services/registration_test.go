package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stock-portfolio/database/dbtest"
	"stock-portfolio/models"
)

func newTestRegistration(t *testing.T) (*RegistrationService, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t)
	svc := NewRegistrationService(db, zerolog.Nop())
	svc.bcryptCost = bcrypt.MinCost
	return svc, db
}

func validInput() RegisterInput {
	return RegisterInput{UserID: "abc123", Username: "alice", Email: "alice@example.com", Password: "s3cret"}
}

func TestRegister_Success(t *testing.T) {
	svc, db := newTestRegistration(t)

	user, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "abc123", user.UserID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "s3cret", user.Password)

	var stored models.User
	require.NoError(t, db.First(&stored, "user_id = ?", "abc123").Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret")))
}

func TestRegister_InvalidUserID(t *testing.T) {
	svc, db := newTestRegistration(t)

	for _, id := range []string{"ab@123", "", "ab 123", "abc-1", "ünï"} {
		t.Run(id, func(t *testing.T) {
			in := validInput()
			in.UserID = id
			_, err := svc.Register(context.Background(), in)
			requireKind(t, err, KindBadRequest, "User ID must be alphanumeric.")
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRegister_EmptyPassword(t *testing.T) {
	svc, _ := newTestRegistration(t)

	in := validInput()
	in.Password = ""
	_, err := svc.Register(context.Background(), in)
	requireKind(t, err, KindBadRequest, "Password cannot be empty.")
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _ := newTestRegistration(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Register(ctx, validInput())
	requireKind(t, err, KindBadRequest, "User ID already exists.")
}

func TestDelete_CascadesPositions(t *testing.T) {
	svc, db := newTestRegistration(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)
	seedUser(t, db, "other")
	for _, uid := range []string{"abc123", "abc123", "other"} {
		require.NoError(t, db.Create(&models.Position{
			UserID: uid, Symbol: "AAPL", NewStockQuantity: 1,
			TotalStockQuantity: 1, PurchaseDate: testDay, Price: 1,
		}).Error)
	}

	require.NoError(t, svc.Delete(ctx, "abc123"))

	var users, positions int64
	require.NoError(t, db.Model(&models.User{}).Where("user_id = ?", "abc123").Count(&users).Error)
	require.NoError(t, db.Model(&models.Position{}).Where("user_id = ?", "abc123").Count(&positions).Error)
	assert.Zero(t, users)
	assert.Zero(t, positions)

	require.NoError(t, db.Model(&models.Position{}).Where("user_id = ?", "other").Count(&positions).Error)
	assert.Equal(t, int64(1), positions)
}

func TestDelete_UnknownUser(t *testing.T) {
	svc, _ := newTestRegistration(t)

	err := svc.Delete(context.Background(), "ghost")
	requireKind(t, err, KindNotFound, "User not found with ID: ghost")
}

func TestInsertUser_DuplicateKeyIsBadRequest(t *testing.T) {
	svc, db := newTestRegistration(t)
	_, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)

	// a second writer that passed the existence check before the first commit
	err = svc.insertUser(db, &models.User{UserID: "abc123", Username: "mallory", Password: "x"})
	requireKind(t, err, KindBadRequest, "User ID already exists.")

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("user_id = ?", "abc123").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
