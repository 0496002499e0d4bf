package services

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/utils"
)

var ErrGoogleDisabled = errors.New("google sign-in is not configured")

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// GoogleVerifier checks a Google ID token for audience and returns the
// verified email address.
type GoogleVerifier func(ctx context.Context, idToken, audience string) (string, error)

func verifyGoogleIDToken(ctx context.Context, idToken, audience string) (string, error) {
	payload, err := idtoken.Validate(ctx, idToken, audience)
	if err != nil {
		return "", err
	}
	email, _ := payload.Claims["email"].(string)
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return "", errors.New("google email is not verified")
	}
	if email == "" {
		return "", errors.New("google token carries no email")
	}
	return email, nil
}

type AuthService struct {
	db             *gorm.DB
	secret         string
	ttl            time.Duration
	googleClientID string
	verifyGoogle   GoogleVerifier
	now            func() time.Time
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration, googleClientID string) *AuthService {
	return &AuthService{
		db:             db,
		secret:         secret,
		ttl:            ttl,
		googleClientID: googleClientID,
		verifyGoogle:   verifyGoogleIDToken,
		now:            utcNow,
	}
}

// Login checks username and password and issues a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "load user")
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}
	return s.issue(user)
}

// GoogleLogin signs in the existing account whose email matches a
// verified Google ID token. Accounts are never created here.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (LoginResult, error) {
	if s.googleClientID == "" {
		return LoginResult{}, ErrGoogleDisabled
	}
	email, err := s.verifyGoogle(ctx, idToken, s.googleClientID)
	if err != nil {
		utils.Log.WithError(err).Warn("google token rejected")
		return LoginResult{}, ErrInvalidCredentials
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "load user")
	}
	return s.issue(user)
}

// Authenticate resolves a bearer token to its user. Expired, malformed
// and revoked tokens all fail.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, *utils.JWTClaims, error) {
	claims, err := utils.VerifyToken(s.secret, token)
	if err != nil {
		return models.User{}, nil, errors.Wrap(ErrInvalidCredentials, err.Error())
	}

	var revoked int64
	if err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token_id = ?", claims.ID).Count(&revoked).Error; err != nil {
		return models.User{}, nil, errors.Wrap(err, "check revoked token")
	}
	if revoked > 0 {
		return models.User{}, nil, ErrTokenRevoked
	}

	uid, err := claims.UserIDUint()
	if err != nil {
		return models.User{}, nil, errors.Wrap(ErrInvalidCredentials, "invalid subject")
	}
	var user models.User
	err = s.db.WithContext(ctx).First(&user, uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, nil, errors.Wrap(ErrInvalidCredentials, "user not found")
	}
	if err != nil {
		return models.User{}, nil, errors.Wrap(err, "load user")
	}
	return user, claims, nil
}

// Logout revokes the token id until the token would have expired anyway,
// and drops revocations that no longer matter.
func (s *AuthService) Logout(ctx context.Context, userID uint, claims *utils.JWTClaims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	expires := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expires_at < ?", s.now()).Delete(&models.RevokedToken{}).Error; err != nil {
			return errors.Wrap(err, "purge revoked tokens")
		}
		rt := models.RevokedToken{TokenID: claims.ID, UserID: userID, ExpiresAt: expires}
		return errors.Wrap(tx.Where(models.RevokedToken{TokenID: claims.ID}).FirstOrCreate(&rt).Error, "revoke token")
	})
}

// SeedAdmin creates the admin account when no user has that username.
func (s *AuthService) SeedAdmin(ctx context.Context, username, email, password string) error {
	if username == "" {
		return nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return errors.Wrap(err, "look up admin")
	}
	if n > 0 {
		return nil
	}
	if password == "" {
		return errors.Errorf("admin %q has no password configured", username)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}
	admin := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsStaff:      true,
		IsSuperuser:  true,
	}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return errors.Wrap(err, "create admin")
	}
	utils.Log.WithField("username", username).Info("admin account created")
	return nil
}

func (s *AuthService) issue(user models.User) (LoginResult, error) {
	token, _, err := utils.GenerateToken(s.secret, user.ID, s.ttl, s.now())
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "sign token")
	}
	return LoginResult{Token: token, User: user}, nil
}
