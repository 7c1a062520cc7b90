package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gymdesk/gym-booking-api/internal/config"
	"github.com/gymdesk/gym-booking-api/internal/model"
	"github.com/gymdesk/gym-booking-api/internal/queue"
	"github.com/gymdesk/gym-booking-api/internal/repository"
	queue_publisher "github.com/gymdesk/gym-booking-api/internal/service"
	"github.com/gymdesk/gym-booking-api/internal/utils"
)

// AuthHandler bundles dependencies for registration, login and session
// management endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Accounts *repository.AccountRepo
	Tokens   *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, a *repository.AccountRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Accounts: a, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"` // member | trainer | admin; anything else becomes member
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type logoutReq struct {
	RefreshToken string `json:"refresh_token"`
	All          bool   `json:"all"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type accountPart struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}
type authData struct {
	User    accountPart `json:"user"`
	Access  tokenPart   `json:"access"`
	Refresh tokenPart   `json:"refresh"`
}

func toAccountPart(a model.Account) accountPart {
	return accountPart{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Role:      a.Role,
		Status:    a.Status,
	}
}

// Register creates an account. Members come out pending and get only an
// acknowledgment. No session exists until an admin approves them.
// Trainer and admin accounts are born active and receive a token pair
// immediately. Every registration is broadcast to the admin dashboard
// queue, best effort.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email/password required")
	}
	if req.FirstName == "" {
		return fail(c, http.StatusBadRequest, "first_name required")
	}
	role := model.NormalizeRole(strings.ToLower(strings.TrimSpace(req.Role)))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acct, err := h.Accounts.Create(ctx, req.FirstName, req.LastName, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, http.StatusConflict, "email already exists")
		}
		log.Printf("auth: create account failed: %v", err)
		return failServer(c)
	}

	// Fire-and-forget broadcast; the admin dashboard picks this up to show
	// "new pending member" notifications. Registration never fails on it.
	go func(a model.Account) {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishMemberRegistered(pubCtx, queue.MemberRegisteredEvent{
			UserID:       a.ID,
			FirstName:    a.FirstName,
			LastName:     a.LastName,
			Email:        a.Email,
			Role:         a.Role,
			Status:       a.Status,
			RegisteredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}(acct)

	if acct.Role == model.RoleMember {
		return respond(c, http.StatusCreated, echo.Map{
			"message": "Registration successful. Account pending approval.",
		})
	}

	data, err := h.issueTokens(ctx, acct)
	if err != nil {
		log.Printf("auth: issue tokens failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusCreated, data)
}

// Login verifies credentials, then enforces the account status: pending
// and rejected accounts cannot obtain a session no matter how valid their
// password is.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acct, err := h.Accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusUnauthorized, "invalid credentials")
		}
		log.Printf("auth: load account failed: %v", err)
		return failServer(c)
	}
	if !utils.VerifyPassword(acct.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	switch acct.Status {
	case model.StatusPending:
		return fail(c, http.StatusForbidden, "account pending approval")
	case model.StatusRejected:
		return fail(c, http.StatusForbidden, "account rejected")
	}

	data, err := h.issueTokens(ctx, acct)
	if err != nil {
		log.Printf("auth: issue tokens failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, data)
}

// issueTokens mints an access/refresh pair for an account and stores the
// refresh token hash.
func (h *AuthHandler) issueTokens(ctx context.Context, acct model.Account) (authData, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, acct.ID, acct.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authData{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authData{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, acct.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authData{}, err
	}
	return authData{
		User:    toAccountPart(acct),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Refresh validates a refresh token by hash, revokes it and issues a new
// pair (rotation). The account status is re-checked so a rejected member
// cannot keep a session alive through refreshes.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh")
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	acct, err := h.Accounts.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusUnauthorized, "invalid refresh")
		}
		log.Printf("auth: load account failed: %v", err)
		return failServer(c)
	}
	if acct.Status != model.StatusActive {
		return fail(c, http.StatusForbidden, "account not active")
	}

	data, err := h.issueTokens(ctx, acct)
	if err != nil {
		log.Printf("auth: issue tokens failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, data)
}

// RefreshAccess validates a refresh token and returns a new access token
// WITHOUT rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh")
	}
	acct, err := h.Accounts.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusUnauthorized, "invalid refresh")
		}
		log.Printf("auth: load account failed: %v", err)
		return failServer(c)
	}
	if acct.Status != model.StatusActive {
		return fail(c, http.StatusForbidden, "account not active")
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, acct.ID, acct.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		log.Printf("auth: issue access failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes the refresh token supplied in the body, ending that
// session. With "all": true every refresh token belonging to the same
// account is revoked, ending every session at once. The access token
// simply expires on its own.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}
	if req.All {
		err = h.Tokens.RevokeAllForUser(ctx, userID)
	} else {
		err = h.Tokens.RevokeByHash(ctx, hash)
	}
	if err != nil {
		log.Printf("auth: revoke token failed: %v", err)
		return failServer(c)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's own account, freshly loaded so the status field
// is current. This is the one authenticated endpoint a pending member may
// call. It sits behind JWT auth but outside the status gate, so a pending
// user can see their own pending state.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acct, err := h.Accounts.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusUnauthorized, "unauthorized")
		}
		log.Printf("auth: load account failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, toAccountPart(acct))
}
