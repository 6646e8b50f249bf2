package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/eventman/internal/model"
)

// PostgresEventRepo はPostgreSQLを使用したイベントリポジトリ。
// 更新・削除はWHERE句に(id, owner_id)を含む1文で実行され、フィルタ評価と
// 変更適用はストレージエンジンが原子的に行う。アプリケーション側の
// ロックは使用しない。
type PostgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo はPostgresEventRepoを生成する。
func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

// eventColumns はSELECT・RETURNINGで共通の列リスト。
const eventColumns = `id, title, content, date, owner_id, status, created_at`

// scanEvent は1行をmodel.Eventに読み込む。
func scanEvent(row *sql.Row) (*model.Event, error) {
	event := &model.Event{}
	err := row.Scan(
		&event.ID, &event.Title, &event.Content, &event.Date,
		&event.OwnerID, &event.Status, &event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// ListByOwner は所有者のイベント一覧をcreated_at降順で返す。
func (r *PostgresEventRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE owner_id = $1
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*model.Event{}
	for rows.Next() {
		event := &model.Event{}
		err := rows.Scan(
			&event.ID, &event.Title, &event.Content, &event.Date,
			&event.OwnerID, &event.Status, &event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

// FindOwned は(id, owner_id)に一致するイベントを取得する。見つからない場合はnilを返す。
func (r *PostgresEventRepo) FindOwned(ctx context.Context, eventID, ownerID string) (*model.Event, error) {
	event, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE id = $1 AND owner_id = $2`,
		eventID, ownerID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return event, nil
}

// Create はイベントを作成する。
func (r *PostgresEventRepo) Create(ctx context.Context, event *model.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, title, content, date, owner_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.Title, event.Content, event.Date,
		event.OwnerID, event.Status, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// UpdateOwned は(id, owner_id)に一致するイベントの可変3フィールドを置き換える。
// 一致する行がない場合はnilを返す。所有者違いと不存在は区別しない。
func (r *PostgresEventRepo) UpdateOwned(ctx context.Context, eventID, ownerID, title, content string, date model.EventDate) (*model.Event, error) {
	event, err := scanEvent(r.db.QueryRowContext(ctx,
		`UPDATE events
		 SET title = $3, content = $4, date = $5
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+eventColumns,
		eventID, ownerID, title, content, date,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// SetStatusOwned は(id, owner_id)に一致するイベントのstatusを無条件に設定する。
// 既に同じstatusでも成功する（冪等）。一致する行がない場合はnilを返す。
func (r *PostgresEventRepo) SetStatusOwned(ctx context.Context, eventID, ownerID string, status model.EventStatus) (*model.Event, error) {
	event, err := scanEvent(r.db.QueryRowContext(ctx,
		`UPDATE events
		 SET status = $3
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+eventColumns,
		eventID, ownerID, status,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update event status: %w", err)
	}
	return event, nil
}

// DeleteOwned は(id, owner_id)に一致するイベントを完全に削除する。
// 削除した行を返し、一致する行がない場合はnilを返す。
func (r *PostgresEventRepo) DeleteOwned(ctx context.Context, eventID, ownerID string) (*model.Event, error) {
	event, err := scanEvent(r.db.QueryRowContext(ctx,
		`DELETE FROM events
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+eventColumns,
		eventID, ownerID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete event: %w", err)
	}
	return event, nil
}

// compile-time interface check
var _ EventRepository = (*PostgresEventRepo)(nil)
