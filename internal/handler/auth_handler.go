// Package handler はHTTPリクエストの受け付けとレスポンス整形を提供する。
// ハンドラーは薄いオーケストレータで、デコード→バリデーション→サービス
// 呼び出し→統一レスポンス整形のみを行う。
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/eventman/internal/auth"
	"github.com/hitoshi/eventman/internal/middleware"
	"github.com/hitoshi/eventman/internal/model"
	"github.com/hitoshi/eventman/internal/validation"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// SignUp は新規アカウントを作成し、セッションを発行する。
	SignUp(ctx context.Context, email, password string) (*auth.Result, error)
	// SignIn は資格情報を検証し、セッションを発行する。
	SignIn(ctx context.Context, email, password string) (*auth.Result, error)
	// Logout はセッションを破棄する。
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlerConfig は認証ハンドラーのCookie設定。
type AuthHandlerConfig struct {
	CookieSecure  bool
	CookieDomain  string
	SessionMaxAge int // 秒
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	validator *validation.Validator
	config    AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, validator *validation.Validator, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: validator,
		config:    config,
	}
}

// authResponse はサインアップ・サインイン成功時のレスポンス。
type authResponse struct {
	Success bool           `json:"success"`
	User    model.Identity `json:"user"`
}

// SignUp は新規登録を処理する。
// POST /auth/sign-up
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input validation.SignUpInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, model.NewBadRequestError("Invalid request payload"))
		return
	}

	if msgs := h.validator.ValidateSignUp(input); msgs != nil {
		middleware.WriteError(w, model.NewValidationError(msgs))
		return
	}

	result, err := h.service.SignUp(r.Context(), input.Email, input.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	h.setSessionCookie(w, result.Session.ID)
	middleware.WriteJSON(w, http.StatusOK, authResponse{
		Success: true,
		User:    result.Identity,
	})
}

// SignIn はサインインを処理する。
// POST /auth/sign-in
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input validation.SignUpInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, model.NewBadRequestError("Invalid request payload"))
		return
	}

	if msgs := h.validator.ValidateSignUp(input); msgs != nil {
		middleware.WriteError(w, model.NewValidationError(msgs))
		return
	}

	result, err := h.service.SignIn(r.Context(), input.Email, input.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	h.setSessionCookie(w, result.Session.ID)
	middleware.WriteJSON(w, http.StatusOK, authResponse{
		Success: true,
		User:    result.Identity,
	})
}

// Logout はサインアウトを処理する。
// POST /auth/log-out
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			middleware.WriteError(w, err)
			return
		}
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在の認証済みユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewUnauthorizedError())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, identity)
}

// setSessionCookie はHTTP OnlyのセッションCookieを設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieを失効させる。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
