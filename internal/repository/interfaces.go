// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/eventman/internal/model"
)

// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
// サインアップの事前チェックを通過した並行リクエストでも、ストレージ層の
// 制約違反はこのエラーとして返り、呼び出し側でConflictに変換される。
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail は正規化（小文字化）したメールアドレスでユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスが既に登録されている場合は
	// ErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindIdentityBySessionID はセッションIDから認証済みIdentityを解決する。
	// セッションが存在しない・期限切れの場合はnilを返す。
	FindIdentityBySessionID(ctx context.Context, sessionID string) (*model.Identity, error)

	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// EventRepository はイベントデータの永続化インターフェース。
// すべての操作は所有者IDを必須のフィルタ条件として受け取る。(id, owner_id)の
// 両方に一致する行だけが対象になるため、他ユーザーのイベントへのアクセスは
// 構造的に不可能になる。「存在しない」と「所有していない」は区別されず、
// どちらもnilとして返る。
type EventRepository interface {
	// ListByOwner は所有者のイベント一覧をcreated_at降順（新しい順）で返す。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Event, error)

	// FindOwned は(id, owner_id)に一致するイベントを取得する。
	FindOwned(ctx context.Context, eventID, ownerID string) (*model.Event, error)

	// Create はイベントを作成する。
	Create(ctx context.Context, event *model.Event) error

	// UpdateOwned は(id, owner_id)に一致するイベントのtitle・content・dateを
	// 1回の原子的な文で置き換え、更新後のイベントを返す。
	UpdateOwned(ctx context.Context, eventID, ownerID, title, content string, date model.EventDate) (*model.Event, error)

	// SetStatusOwned は(id, owner_id)に一致するイベントのstatusを無条件に
	// 設定し、更新後のイベントを返す。
	SetStatusOwned(ctx context.Context, eventID, ownerID string, status model.EventStatus) (*model.Event, error)

	// DeleteOwned は(id, owner_id)に一致するイベントを完全に削除し、
	// 削除した行を返す。
	DeleteOwned(ctx context.Context, eventID, ownerID string) (*model.Event, error)
}
