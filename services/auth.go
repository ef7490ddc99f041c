package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stock-portfolio/models"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	msgInvalidCredentials = "Invalid credentials"
)

// Tokens is the credential pair handed out on login and refresh.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type tokenClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AuthService struct {
	db     *gorm.DB
	tokens TokenStore
	cfg    AuthConfig
	now    func() time.Time
	log    zerolog.Logger
}

func NewAuthService(db *gorm.DB, tokens TokenStore, cfg AuthConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		db:     db,
		tokens: tokens,
		cfg:    cfg,
		now:    time.Now,
		log:    log.With().Str("component", "auth").Logger(),
	}
}

// Login checks the password against the stored hash and issues tokens.
func (s *AuthService) Login(ctx context.Context, userID, password string) (*Tokens, error) {
	s.log.Debug().Str("user_id", userID).Msg("user login")

	var user models.User
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Unauthorizedf(msgInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.log.Warn().Str("user_id", userID).Msg("invalid password")
		return nil, Unauthorizedf(msgInvalidCredentials)
	}

	return s.issue(ctx, user.UserID)
}

// Refresh trades a valid refresh token for a new pair. The old refresh
// token stops working.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	owner, err := s.tokens.Consume(ctx, claims.ID)
	if errors.Is(err, ErrTokenNotFound) {
		return nil, Unauthorizedf("Refresh token is invalid or expired")
	}
	if err != nil {
		return nil, err
	}
	if owner != claims.Subject {
		return nil, Unauthorizedf("Refresh token is invalid or expired")
	}

	return s.issue(ctx, owner)
}

// ParseAccessToken validates an access token and returns its user id.
func (s *AuthService) ParseAccessToken(token string) (string, error) {
	claims, err := s.parse(token, tokenTypeAccess)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *AuthService) issue(ctx context.Context, userID string) (*Tokens, error) {
	access, _, err := s.sign(userID, tokenTypeAccess, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, jti, err := s.sign(userID, tokenTypeRefresh, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, jti, userID, s.cfg.RefreshTTL); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", userID).Msg("tokens issued")
	return &Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.AccessTTL / time.Second),
	}, nil
}

func (s *AuthService) sign(userID, typ string, ttl time.Duration) (string, string, error) {
	now := s.now()
	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, jti, nil
}

func (s *AuthService) parse(raw, typ string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, &Error{Kind: KindUnauthorized, Message: "Invalid token", Err: err}
	}
	if claims.Type != typ || claims.Subject == "" {
		return nil, Unauthorizedf("Invalid token")
	}
	return claims, nil
}
