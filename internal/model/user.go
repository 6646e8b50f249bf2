// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Emailは小文字に正規化した状態で永続化する（大文字小文字を区別しない一意制約）。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity は認証済み呼び出し元の最小表現（id + email）。
// セッションから1リクエストにつき1回だけ解決され、リクエストのライフタイム中は
// 不変として扱う。このコアでは永続化しない。
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
