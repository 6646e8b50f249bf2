// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/eventman/internal/model"
)

// WriteError はあらゆる失敗を統一フォーマットで書き込むエラーノーマライザ。
// すべてのハンドラーはこの1箇所を経由して失敗を返す。
// statusCodeを持つ失敗（*model.APIError）はそのまま通し、それ以外は
// 詳細をログに記録したうえで一般的な500に畳み込む。この関数自体は
// 決して失敗しない。
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		slog.Error("unexpected error", slog.String("error", err.Error()))
		apiErr = &model.APIError{
			StatusCode:    http.StatusInternalServerError,
			StatusMessage: "Internal Server Error",
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	if encodeErr := json.NewEncoder(w).Encode(apiErr); encodeErr != nil {
		slog.Error("failed to encode error response", slog.String("error", encodeErr.Error()))
	}
}

// WriteJSON は成功レスポンスをJSONで書き込む。
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
