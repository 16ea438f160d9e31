package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sensus-health/sensus-api/internal/application"
	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/interface/middleware"
	"github.com/sensus-health/sensus-api/pkg/helpers"
	"github.com/sensus-health/sensus-api/pkg/response"
	"github.com/sensus-health/sensus-api/pkg/validation"
)

const birthDateLayout = "2006-01-02"

type UserHandler struct {
	Svc     *application.UserService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	BirthDate string `json:"birth_date" binding:"required,datetime=2006-01-02"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

type updateProfileRequest struct {
	FirstName   *string                 `json:"first_name"`
	LastName    *string                 `json:"last_name"`
	BirthDate   *string                 `json:"birth_date"`
	Preferences *entity.Preferences     `json:"preferences"`
	Privacy     *entity.PrivacySettings `json:"privacy"`
}

func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"birth_date":  u.BirthDate.Format(birthDateLayout),
		"avatar_url":  u.AvatarURL,
		"preferences": u.Preferences,
		"privacy":     u.Privacy,
		"created_at":  u.CreatedAt,
		"updated_at":  u.UpdatedAt,
		"last_login":  u.LastLogin,
	}
}

func tokenMeta(pair application.TokenPair) map[string]any {
	return map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid payload", validation.ToDetails(err))
		return
	}
	birth, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid payload", map[string]string{"birth_date": "must match datetime format: 2006-01-02"})
		return
	}

	u, pair, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birth,
	})
	switch {
	case errors.Is(err, application.ErrWeakPassword):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "password must be at least 8 characters with uppercase, lowercase and a number", nil)
		return
	case errors.Is(err, application.ErrEmailTaken):
		response.Error(c, http.StatusConflict, response.CodeConflict, "email already registered", nil)
		return
	case err != nil:
		h.Logger.WithError(err).Error("register failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "registration failed", nil)
		return
	}

	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusCreated, gin.H{
		"user":          userJSON(u),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "account created", tokenMeta(pair))
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid payload", validation.ToDetails(err))
		return
	}

	ip := c.GetString(middleware.CtxRealIPKey)
	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password, ip)
	switch {
	case errors.Is(err, application.ErrLockedOut):
		retry := int(h.Svc.LockoutRetryAfter(c.Request.Context(), req.Email, ip).Seconds())
		response.Error(c, http.StatusTooManyRequests, response.CodeRateLimited, "too many failed attempts, try again later",
			map[string]any{"retry_after": retry})
		return
	case err != nil:
		// Deliberately generic: never reveal which credential was wrong.
		response.Error(c, http.StatusUnauthorized, response.CodeAuth, "invalid credentials", nil)
		return
	}

	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user":          userJSON(u),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "login successful", tokenMeta(pair))
}

func (h *UserHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.ShouldBindJSON(&body)
		refresh = body.RefreshToken
	}
	if refresh == "" {
		response.Error(c, http.StatusUnauthorized, response.CodeAuth, "missing refresh token", nil)
		return
	}
	pair, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, response.CodeAuth, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "token refreshed", tokenMeta(pair))
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Preferences: req.Preferences,
		Privacy:     req.Privacy,
	}
	if req.BirthDate != nil {
		birth, err := time.Parse(birthDateLayout, *req.BirthDate)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid payload", map[string]string{"birth_date": "must match datetime format: 2006-01-02"})
			return
		}
		in.BirthDate = &birth
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, in)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("update profile failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to update profile", nil)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "profile updated", nil)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid payload", validation.ToDetails(err))
		return
	}
	err := h.Svc.ChangePassword(c.Request.Context(), uid, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, application.ErrWeakPassword):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "password must be at least 8 characters with uppercase, lowercase and a number", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, response.CodeAuth, "invalid credentials", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "user not found", nil)
	case err != nil:
		h.Logger.WithError(err).Error("change password failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to change password", nil)
	default:
		response.Success(c, http.StatusOK, gin.H{"changed": true}, "password updated", nil)
	}
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "avatar file is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), uid, file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("avatar upload failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to upload avatar", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar updated", nil)
}

func (h *UserHandler) ExportData(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	url, err := h.Svc.ExportData(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("data export failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to export data", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"export_url": url}, "export ready", nil)
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.DeleteAccount(c.Request.Context(), uid); err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("account deletion failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to delete account", nil)
		return
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "account deleted", nil)
}
