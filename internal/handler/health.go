package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/eventman/internal/middleware"
)

// Pinger はストレージ疎通確認のインターフェース。sql.DBが満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewHealthHandler はヘルスチェックエンドポイントのハンドラーを返す。
// GET /healthz
// ストレージに疎通できない場合は503を返す。
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	}
}
