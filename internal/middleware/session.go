package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/eventman/internal/model"
)

// SessionCookieName はセッションIDを保持するCookieの名前。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストにIdentityを格納するためのキー。
var identityContextKey = contextKey("identity")

// IdentityFinder はセッションIDからIdentityを解決するインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type IdentityFinder interface {
	FindIdentityBySessionID(ctx context.Context, sessionID string) (*model.Identity, error)
}

// NewSessionMiddleware はHTTP Only CookieからセッションIDを読み取り、
// 検証済みIdentityをリクエストコンテキストに1回だけ注入するミドルウェアを
// 返す。解決はリクエストにつき1回で、以降のハンドラーはコンテキスト経由の
// 読み取りキャッシュを参照する。解決できないリクエストには統一フォーマットの
// 401を返し、以降の処理には進ませない。
func NewSessionMiddleware(finder IdentityFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				WriteError(w, model.NewUnauthorizedError())
				return
			}

			identity, err := finder.FindIdentityBySessionID(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to resolve session",
					slog.String("error", err.Error()),
				)
				WriteError(w, model.NewUnauthorizedError())
				return
			}
			if identity == nil {
				WriteError(w, model.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext はリクエストコンテキストから認証済みIdentityを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (*model.Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok || identity == nil || identity.ID == "" {
		return nil, fmt.Errorf("identity not found in context")
	}
	return identity, nil
}

// ContextWithIdentity はコンテキストにIdentityを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
