package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/softdesk/softdesk-api/internal/config"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/internal/utils"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

const msgBadCredentials = "no active account found with the given credentials"

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg}
}

type TokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// TokenPair is returned by the obtain and refresh endpoints.
type TokenPair struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Obtain exchanges a username and password for an access/refresh pair.
func (s *AuthService) Obtain(ctx context.Context, req *TokenRequest, clientIP, userAgent string) (*TokenPair, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized(msgBadCredentials)
		}
		return nil, err
	}
	if !user.IsActive || !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized(msgBadCredentials)
	}

	var pair *TokenPair
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		pair, _, err = s.issue(tx, &user, clientIP, userAgent)
		if err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&user).Update("last_login", &now).Error
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and
// replaced by a new one.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, clientIP, userAgent string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, response.NewUnauthorized("refresh token required")
	}

	var stored models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ?", hashRefreshToken(refreshToken)).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("token is invalid or expired")
		}
		return nil, err
	}
	if !stored.Usable(time.Now()) {
		return nil, response.NewUnauthorized("token is invalid or expired")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("user not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, response.NewUnauthorized("user is inactive")
	}

	var pair *TokenPair
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			record *models.RefreshToken
			err    error
		)
		pair, record, err = s.issue(tx, &user, clientIP, userAgent)
		if err != nil {
			return err
		}
		return tx.Model(&stored).Updates(map[string]interface{}{
			"revoked_at":           time.Now(),
			"replaced_by_token_id": record.ID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Revoke invalidates a refresh token. Unknown tokens are ignored.
func (s *AuthService) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hashRefreshToken(refreshToken)).
		Update("revoked_at", time.Now()).Error
}

// PurgeRefreshTokens deletes tokens that expired or were revoked before now.
func (s *AuthService) PurgeRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", now, now).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

func (s *AuthService) issue(tx *gorm.DB, user *models.User, clientIP, userAgent string) (*TokenPair, *models.RefreshToken, error) {
	now := time.Now()
	accessHours := positiveOr(s.jwtConfig.AccessHours, 1)
	refreshHours := positiveOr(s.jwtConfig.RefreshHours, 24*7)

	access, err := utils.GenerateToken(user.ID, user.Username, accessHours)
	if err != nil {
		return nil, nil, err
	}
	refresh, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, nil, err
	}

	record := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   refreshHash,
		ExpiresAt:   now.Add(time.Duration(refreshHours) * time.Hour),
		CreatedByIP: clientIP,
		UserAgent:   truncate(userAgent, 255),
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, nil, err
	}

	return &TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  now.Add(time.Duration(accessHours) * time.Hour),
		RefreshExpiresAt: record.ExpiresAt,
	}, &record, nil
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func generateRefreshToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(randomBytes)
	tokenHash = hashRefreshToken(token)
	return token, tokenHash, nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
