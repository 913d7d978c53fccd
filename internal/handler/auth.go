package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ritualplanner/ritualplanner/internal/config"
	"github.com/ritualplanner/ritualplanner/internal/model"
	"github.com/ritualplanner/ritualplanner/internal/notify"
	"github.com/ritualplanner/ritualplanner/internal/otp"
	"github.com/ritualplanner/ritualplanner/internal/queue"
	"github.com/ritualplanner/ritualplanner/internal/repository"
	"github.com/ritualplanner/ritualplanner/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	OTP    otp.Store
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, store otp.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, OTP: store}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zipcode  string `json:"zipcode"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type verifyOTPReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}
type resetReq struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User    model.User `json:"user"`
	Access  tokenPart  `json:"access"`
	Refresh tokenPart  `json:"refresh"`
}

// issuePair creates an access/refresh token pair and stores the refresh hash.
func (h *AuthHandler) issuePair(ctx context.Context, u model.User) (tokenPart, tokenPart, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	return tokenPart{Token: access.Token, Expires: access.Exp},
		tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, nil // raw back to client
}

// Register creates the User and Auth rows atomically, returns tokens
// immediately and dispatches a welcome email (fire-and-forget).
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}
	if req.Username == "" {
		req.Username = req.Email
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u := model.User{
		Name: req.Name, Email: req.Email, Phone: req.Phone,
		City: req.City, State: req.State, Zipcode: req.Zipcode,
	}
	if err := h.Users.Register(ctx, &u, req.Username, hash); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	access, refresh, err := h.issuePair(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	// Welcome mail is dispatched asynchronously; a broker or SMTP failure
	// never fails the registration that triggered it.
	go func() {
		_ = notify.PublishEmail(context.Background(), queue.EmailRequestedEvent{
			Kind: queue.EmailWelcome,
			To:   u.Email,
			Data: map[string]string{"Name": u.Name, "Email": u.Email},
		})
	}()

	return c.JSON(http.StatusCreated, authResp{User: u, Access: access, Refresh: refresh})
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, hash, err := h.Users.Credentials(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(hash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	access, refresh, err := h.issuePair(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, authResp{User: u, Access: access, Refresh: refresh})
}

// Refresh validates the presented refresh token by hash, revokes it and
// issues a fresh pair (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	access, refresh, err := h.issuePair(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, authResp{User: u, Access: access, Refresh: refresh})
}

// Logout revokes a specific refresh token, or every token of the
// authenticated user when the body carries none.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}

	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide refresh_token or Authorization header"})
	}
	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ForgotPassword issues a 6-digit OTP for the email and dispatches it by
// mail. The response is the same generic success whether or not the account
// exists, so the endpoint cannot be used to probe for registered emails.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := reqCtx(c)
	defer cancel()

	generic := echo.Map{"success": "if the account exists, an OTP has been sent"}

	if _, err := h.Users.GetByEmail(ctx, email); err != nil {
		return c.JSON(http.StatusOK, generic)
	}
	code, err := utils.NewOTPCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue otp"})
	}
	if err := h.OTP.Put(ctx, email, code, h.Cfg.OTPTTL); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue otp"})
	}
	go func() {
		_ = notify.PublishEmail(context.Background(), queue.EmailRequestedEvent{
			Kind: queue.EmailOTP,
			To:   email,
			Data: map[string]string{
				"Code":          code,
				"ExpiryMinutes": strconv.Itoa(int(h.Cfg.OTPTTL / time.Minute)),
			},
		})
	}()
	return c.JSON(http.StatusOK, generic)
}

// VerifyOTP checks a code without changing the password. A successful match
// consumes the entry.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPReq
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/otp required"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.verifyOTP(ctx, c, email, req.OTP)
	if err != nil || !ok {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": "otp verified"})
}

// ResetPassword verifies the OTP and replaces the stored password hash in
// one call; the successful verification consumes the entry.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/otp/password required"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.verifyOTP(ctx, c, email, req.OTP)
	if err != nil || !ok {
		return err
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	if err := h.Users.UpdatePassword(ctx, email, hash); err != nil {
		return writeRepoErr(c, err, "failed to reset password")
	}
	_ = h.Tokens.RevokeAllForUser(ctx, h.mustUserID(ctx, email))
	return c.JSON(http.StatusOK, echo.Map{"success": "password updated"})
}

// verifyOTP runs the store check and writes the error response itself when
// verification fails. It returns ok=true with a nil error only on a match.
func (h *AuthHandler) verifyOTP(ctx context.Context, c echo.Context, email, code string) (bool, error) {
	ok, err := h.OTP.Verify(ctx, email, code)
	switch {
	case errors.Is(err, otp.ErrBadCode):
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, otp.ErrNoEntry):
		return false, c.JSON(http.StatusNotFound, echo.Map{"error": "no otp issued for this email"})
	case errors.Is(err, otp.ErrExpired):
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "otp expired"})
	case err != nil:
		return false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "otp verification failed"})
	case !ok:
		return false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid otp"})
	}
	return true, nil
}

// mustUserID resolves an email to its user id, returning "" on failure.
// Used only for best-effort session revocation after a password reset.
func (h *AuthHandler) mustUserID(ctx context.Context, email string) string {
	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		return ""
	}
	return u.ID
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return writeRepoErr(c, err, "load user failed")
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateProfile rewrites the caller's profile fields.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var u model.User
	if err := c.Bind(&u); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	u.ID = uid
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.UpdateProfile(ctx, &u); err != nil {
		return writeRepoErr(c, err, "failed to update profile")
	}
	out, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return writeRepoErr(c, err, "load user failed")
	}
	return c.JSON(http.StatusOK, out)
}

// DeleteAccount removes the caller's refresh tokens, Auth row and User row
// in one transaction.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.DeleteAccount(ctx, uid); err != nil {
		return writeRepoErr(c, err, "failed to delete account")
	}
	return c.NoContent(http.StatusNoContent)
}
