package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stock-portfolio/database"
	"stock-portfolio/models"
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// RegisterInput is the identity submitted at sign-up.
type RegisterInput struct {
	UserID   string
	Username string
	Email    string
	Password string
}

type RegistrationService struct {
	db         *gorm.DB
	log        zerolog.Logger
	bcryptCost int
}

func NewRegistrationService(db *gorm.DB, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{
		db:         db,
		log:        log.With().Str("component", "registration").Logger(),
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register validates and stores a new user with a hashed password.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !userIDPattern.MatchString(in.UserID) {
		return nil, BadRequestf("User ID must be alphanumeric.")
	}
	if in.Password == "" {
		return nil, BadRequestf("Password cannot be empty.")
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("user_id = ?", in.UserID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check user id: %w", err)
	}
	if count > 0 {
		s.log.Debug().Str("user_id", in.UserID).Msg("user id already exists")
		return nil, BadRequestf("User ID already exists.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		UserID:   in.UserID,
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.insertUser(db, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.UserID).Msg("user registered")
	return user, nil
}

// insertUser creates the row. A concurrent registration that wins the race
// after the existence check surfaces as a duplicate key.
func (s *RegistrationService) insertUser(db *gorm.DB, user *models.User) error {
	err := db.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		s.log.Debug().Str("user_id", user.UserID).Msg("user id taken concurrently")
		return BadRequestf("User ID already exists.")
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Delete removes the user and every position row it owns.
func (s *RegistrationService) Delete(ctx context.Context, userID string) error {
	var removed int64
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if _, err := lockUser(tx, userID); err != nil {
			return err
		}
		res := tx.Where("user_id = ?", userID).Delete(&models.Position{})
		if res.Error != nil {
			return fmt.Errorf("delete positions: %w", res.Error)
		}
		removed = res.RowsAffected
		if err := tx.Where("user_id = ?", userID).Delete(&models.User{}).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		var domainErr *Error
		if !errors.As(err, &domainErr) {
			s.log.Error().Err(err).Str("user_id", userID).Msg("delete user failed")
		}
		return err
	}

	s.log.Info().Str("user_id", userID).Int64("positions", removed).Msg("user deleted")
	return nil
}
