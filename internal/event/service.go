// Package event はイベントのビジネスロジックを提供する。
package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/eventman/internal/model"
	"github.com/hitoshi/eventman/internal/repository"
	"github.com/hitoshi/eventman/internal/security"
)

// MetricsRecorder はイベント操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordEventCreated()
	RecordEventCompleted()
	RecordEventDeleted()
}

// Params はイベント作成・編集の入力。
type Params struct {
	Title   string
	Content string
	Date    model.EventDate
}

// Service はイベントに関するビジネスロジックを提供する。
// すべての操作は解決済みの所有者IDを必須で受け取り、そのままリポジトリの
// フィルタ条件に渡す。所有者IDなしでイベントに触れる経路は存在しない。
type Service struct {
	repo      repository.EventRepository
	sanitizer *security.ContentSanitizer
	metrics   MetricsRecorder
}

// NewService はServiceを生成する。
func NewService(repo repository.EventRepository, sanitizer *security.ContentSanitizer, metrics MetricsRecorder) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// List は所有者のイベント一覧を新しい順で返す。
func (s *Service) List(ctx context.Context, ownerID string) ([]*model.Event, error) {
	events, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Get は(id, owner)に一致するイベントを返す。
// 一致しない場合は404を返す。不存在と所有者違いは区別しない。
func (s *Service) Get(ctx context.Context, eventID, ownerID string) (*model.Event, error) {
	event, err := s.repo.FindOwned(ctx, eventID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, model.NewEventNotFoundError()
	}
	return event, nil
}

// Create は新規イベントをpending状態で作成する。
// title・contentは保存前にマークアップを除去する。
func (s *Service) Create(ctx context.Context, ownerID string, params Params) (*model.Event, error) {
	event := &model.Event{
		ID:        uuid.New().String(),
		Title:     s.sanitizer.Sanitize(params.Title),
		Content:   s.sanitizer.Sanitize(params.Content),
		Date:      params.Date,
		OwnerID:   ownerID,
		Status:    model.EventStatusPending,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.metrics.RecordEventCreated()
	slog.Info("event created",
		slog.String("event_id", event.ID),
		slog.String("owner_id", ownerID),
	)

	return event, nil
}

// Update は(id, owner)に一致するイベントの可変3フィールドを置き換える。
// 一致しない場合は404を返す。
func (s *Service) Update(ctx context.Context, eventID, ownerID string, params Params) (*model.Event, error) {
	event, err := s.repo.UpdateOwned(ctx, eventID, ownerID,
		s.sanitizer.Sanitize(params.Title),
		s.sanitizer.Sanitize(params.Content),
		params.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	if event == nil {
		return nil, model.NewEventNotFoundError()
	}
	return event, nil
}

// Complete は(id, owner)に一致するイベントをcompletedにする。
// 既にcompletedでも成功する（冪等）。一致しない場合は404を返す。
func (s *Service) Complete(ctx context.Context, eventID, ownerID string) (*model.Event, error) {
	event, err := s.repo.SetStatusOwned(ctx, eventID, ownerID, model.EventStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to complete event: %w", err)
	}
	if event == nil {
		return nil, model.NewEventNotFoundError()
	}

	s.metrics.RecordEventCompleted()
	return event, nil
}

// Delete は(id, owner)に一致するイベントを完全に削除する。
// 一致しない場合は404を返す。
func (s *Service) Delete(ctx context.Context, eventID, ownerID string) error {
	event, err := s.repo.DeleteOwned(ctx, eventID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if event == nil {
		return model.NewEventNotFoundError()
	}

	s.metrics.RecordEventDeleted()
	slog.Info("event deleted",
		slog.String("event_id", eventID),
		slog.String("owner_id", ownerID),
	)
	return nil
}
