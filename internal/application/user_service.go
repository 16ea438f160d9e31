package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/domain/repository"
	"github.com/sensus-health/sensus-api/pkg/cache"
	"github.com/sensus-health/sensus-api/pkg/helpers"
)

// UserService implements registration, authentication, sessions, profile
// management and account deletion.
type UserService struct {
	Users      repository.UserRepository
	Diary      repository.DiaryRepository
	Evals      repository.EvaluationRepository
	JWT        *helpers.JWTManager
	Redis      *redis.Client
	Cache      *cache.Cache
	Logger     *logrus.Logger
	GCS        *storage.Client
	GCSBucket  string
	BcryptCost int

	LoginMaxAttempts   int
	LoginLockoutWindow time.Duration
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func sessionKey(userID string) string { return "user:session:" + userID }

func lockoutKey(email, ip string) string { return "login:fail:" + email + ":" + ip }

func profileCacheKey(userID string) string { return cache.PrefixUser + "profile:" + userID }

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339Nano) }

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	BirthDate time.Time
}

// Register creates the account and immediately issues a session.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, TokenPair, error) {
	if !helpers.PasswordMeetsPolicy(in.Password) {
		return nil, TokenPair{}, ErrWeakPassword
	}
	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, TokenPair{}, err
	}
	u := &entity.User{
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		BirthDate: in.BirthDate,
		Preferences: entity.Preferences{
			Theme:         "light",
			Language:      "es",
			Notifications: true,
		},
		Privacy: entity.PrivacySettings{AllowReminders: true},
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Authenticate validates email/password without issuing tokens. Failures are
// indistinguishable to the caller (credential enumeration).
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates with a per-email+IP lockout: after LoginMaxAttempts
// failures inside the window the account locks for the rest of the window.
func (s *UserService) Login(ctx context.Context, email, password, ip string) (*entity.User, TokenPair, error) {
	key := lockoutKey(strings.ToLower(strings.TrimSpace(email)), ip)
	if s.locked(ctx, key) {
		return nil, TokenPair{}, ErrLockedOut
	}
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		if n := s.Cache.Increment(ctx, key, s.LoginLockoutWindow); n > 0 && s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"ip": ip, "attempts": n}).Debug("failed login attempt")
		}
		return nil, TokenPair{}, err
	}
	s.Cache.Delete(ctx, key)
	if err := s.Users.TouchLastLogin(ctx, u.ID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("touch last_login failed")
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *UserService) locked(ctx context.Context, key string) bool {
	v, ok := s.Cache.Get(ctx, key)
	if !ok {
		return false
	}
	var n int
	_, _ = fmt.Sscanf(v, "%d", &n)
	return n >= s.LoginMaxAttempts
}

// LockoutRetryAfter returns how long the caller must wait before retrying.
func (s *UserService) LockoutRetryAfter(ctx context.Context, email, ip string) time.Duration {
	return s.Cache.TTL(ctx, lockoutKey(strings.ToLower(strings.TrimSpace(email)), ip))
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, u.Email, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, u.Email, sid)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"first_name": u.FirstName,
			"sid":        sid,
			"created_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh validates the refresh token against the current session and rotates
// both the session id and the token pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, sessionKey(u.ID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, ErrInvalidCredentials
		}
	}
	return s.IssueTokens(ctx, u)
}

// Logout removes the Redis session, invalidating outstanding tokens.
func (s *UserService) Logout(ctx context.Context, userID string) {
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, sessionKey(userID)).Err(); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("session delete failed")
		}
	}
}

// GetProfile returns the user, read-through the profile cache.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	var cached entity.User
	if s.Cache.GetJSON(ctx, profileCacheKey(userID), &cached) {
		return &cached, nil
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	s.Cache.SetJSON(ctx, profileCacheKey(userID), cacheableProfile(u), 5*time.Minute)
	return u, nil
}

// cacheableProfile strips credentials before the record leaves the process:
// the bcrypt hash never goes into Redis.
func cacheableProfile(u *entity.User) *entity.User {
	cp := *u
	cp.Password = ""
	return &cp
}

type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	BirthDate   *time.Time
	Preferences *entity.Preferences
	Privacy     *entity.PrivacySettings
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.BirthDate != nil {
		u.BirthDate = *in.BirthDate
	}
	if in.Preferences != nil {
		u.Preferences = *in.Preferences
	}
	if in.Privacy != nil {
		u.Privacy = *in.Privacy
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.Cache.Delete(ctx, profileCacheKey(userID))

	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"first_name": u.FirstName,
			"updated_at": nowRFC3339(),
		})
		if ttl, tErr := s.Redis.TTL(ctx, key).Result(); tErr == nil && ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if _, pErr := pipe.Exec(ctx); pErr != nil && s.Logger != nil {
			s.Logger.WithError(pErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return u, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if !helpers.PasswordMeetsPolicy(next) {
		return ErrWeakPassword
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return ErrUserNotFound
	}
	if !helpers.CompareHashAndPassword(u.Password, current) {
		return ErrInvalidCredentials
	}
	hash, err := helpers.HashPassword(next, s.BcryptCost)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(ctx, userID, hash)
}

// UploadAvatar stores the image in GCS and updates the profile.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return "", ErrUserNotFound
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	u.AvatarURL = url
	if err := s.Users.Update(ctx, u); err != nil {
		return "", err
	}
	s.Cache.Delete(ctx, profileCacheKey(userID))
	return url, nil
}

// ExportData bundles the user's record, diary entries and evaluations into a
// JSON document and uploads it to GCS, returning the object URL.
func (s *UserService) ExportData(ctx context.Context, userID string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	b, err := s.exportDocument(ctx, userID)
	if err != nil {
		return "", err
	}
	objectPath := filepath.ToSlash(filepath.Join("exports", userID, time.Now().UTC().Format("20060102T150405")+".json"))
	return helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, "application/json", bytes.NewReader(b))
}

// exportDocument gathers the user's complete history. The unpaginated
// repository reads matter here: an export must contain every row.
func (s *UserService) exportDocument(ctx context.Context, userID string) ([]byte, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	entries, err := s.Diary.AllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	evals, err := s.Evals.AllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Password = ""
	export := map[string]any{
		"exported_at": nowRFC3339(),
		"user":        u,
		"diary":       entries,
		"evaluations": evals,
	}
	return json.MarshalIndent(export, "", "  ")
}

// DeleteAccount soft-deletes the user, wipes owned rows in one transaction,
// and tears down the session so the tokens stop working immediately.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.Users.SoftDeleteCascade(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.Logout(ctx, userID)
	s.Cache.Delete(ctx, profileCacheKey(userID))
	return nil
}
