package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/eventman/internal/model"
	"github.com/hitoshi/eventman/internal/security"
)

// --- モック定義 ---

type mockEventRepo struct {
	listByOwnerFn    func(ctx context.Context, ownerID string) ([]*model.Event, error)
	findOwnedFn      func(ctx context.Context, eventID, ownerID string) (*model.Event, error)
	createFn         func(ctx context.Context, event *model.Event) error
	updateOwnedFn    func(ctx context.Context, eventID, ownerID, title, content string, date model.EventDate) (*model.Event, error)
	setStatusOwnedFn func(ctx context.Context, eventID, ownerID string, status model.EventStatus) (*model.Event, error)
	deleteOwnedFn    func(ctx context.Context, eventID, ownerID string) (*model.Event, error)
}

func (m *mockEventRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Event, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockEventRepo) FindOwned(ctx context.Context, eventID, ownerID string) (*model.Event, error) {
	if m.findOwnedFn != nil {
		return m.findOwnedFn(ctx, eventID, ownerID)
	}
	return nil, nil
}

func (m *mockEventRepo) Create(ctx context.Context, event *model.Event) error {
	if m.createFn != nil {
		return m.createFn(ctx, event)
	}
	return nil
}

func (m *mockEventRepo) UpdateOwned(ctx context.Context, eventID, ownerID, title, content string, date model.EventDate) (*model.Event, error) {
	if m.updateOwnedFn != nil {
		return m.updateOwnedFn(ctx, eventID, ownerID, title, content, date)
	}
	return nil, nil
}

func (m *mockEventRepo) SetStatusOwned(ctx context.Context, eventID, ownerID string, status model.EventStatus) (*model.Event, error) {
	if m.setStatusOwnedFn != nil {
		return m.setStatusOwnedFn(ctx, eventID, ownerID, status)
	}
	return nil, nil
}

func (m *mockEventRepo) DeleteOwned(ctx context.Context, eventID, ownerID string) (*model.Event, error) {
	if m.deleteOwnedFn != nil {
		return m.deleteOwnedFn(ctx, eventID, ownerID)
	}
	return nil, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordEventCreated()   {}
func (nopMetrics) RecordEventCompleted() {}
func (nopMetrics) RecordEventDeleted()   {}

func newTestService(repo *mockEventRepo) *Service {
	return NewService(repo, security.NewContentSanitizer(), nopMetrics{})
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *model.APIError", err)
	}
	if apiErr.StatusCode != 404 || apiErr.StatusMessage != "Event not found or you are not the owner" {
		t.Errorf("error = %+v", apiErr)
	}
}

// 作成時にID・pending状態・作成時刻が設定され、マークアップが
// 除去されることを検証
func TestService_Create(t *testing.T) {
	var saved *model.Event
	repo := &mockEventRepo{
		createFn: func(ctx context.Context, event *model.Event) error {
			saved = event
			return nil
		},
	}

	svc := newTestService(repo)
	created, err := svc.Create(context.Background(), "owner-1", Params{
		Title:   "<b>Team meeting</b>",
		Content: "<script>x()</script>Quarterly planning session",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved == nil {
		t.Fatal("expected event to be saved")
	}
	if saved.ID == "" {
		t.Error("expected generated event ID")
	}
	if saved.OwnerID != "owner-1" {
		t.Errorf("owner = %q, want owner-1", saved.OwnerID)
	}
	if saved.Status != model.EventStatusPending {
		t.Errorf("status = %q, want pending", saved.Status)
	}
	if saved.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
	if saved.Title != "Team meeting" {
		t.Errorf("title = %q, want markup stripped", saved.Title)
	}
	if saved.Content != "Quarterly planning session" {
		t.Errorf("content = %q, want markup stripped", saved.Content)
	}
	if created != saved {
		t.Error("expected returned event to be the saved one")
	}
}

// 一覧が所有者IDでリポジトリに委譲されることを検証
func TestService_List(t *testing.T) {
	repo := &mockEventRepo{
		listByOwnerFn: func(ctx context.Context, ownerID string) ([]*model.Event, error) {
			if ownerID != "owner-1" {
				t.Errorf("ownerID = %q, want owner-1", ownerID)
			}
			return []*model.Event{{ID: "event-1", OwnerID: ownerID}}, nil
		},
	}

	svc := newTestService(repo)
	events, err := svc.List(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].ID != "event-1" {
		t.Errorf("events = %+v", events)
	}
}

// 所有していないイベントのGetが404になることを検証
func TestService_Get_NotOwned(t *testing.T) {
	svc := newTestService(&mockEventRepo{})
	_, err := svc.Get(context.Background(), "event-1", "other-user")
	assertNotFound(t, err)
}

// 更新が(id, owner)で委譲され、サニタイズ済みの値が渡ることを検証
func TestService_Update(t *testing.T) {
	repo := &mockEventRepo{
		updateOwnedFn: func(ctx context.Context, eventID, ownerID, title, content string, date model.EventDate) (*model.Event, error) {
			if eventID != "event-1" || ownerID != "owner-1" {
				t.Errorf("filter = (%q, %q), want (event-1, owner-1)", eventID, ownerID)
			}
			if title != "New title" {
				t.Errorf("title = %q, want sanitized", title)
			}
			return &model.Event{ID: eventID, Title: title, Content: content, Date: date, OwnerID: ownerID}, nil
		},
	}

	svc := newTestService(repo)
	updated, err := svc.Update(context.Background(), "event-1", "owner-1", Params{
		Title:   "<i>New title</i>",
		Content: "Updated event content",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Title != "New title" {
		t.Errorf("title = %q", updated.Title)
	}
}

// 一致する行がない更新が404になることを検証
func TestService_Update_NotFound(t *testing.T) {
	svc := newTestService(&mockEventRepo{})
	_, err := svc.Update(context.Background(), "missing", "owner-1", Params{
		Title:   "New title",
		Content: "Updated event content",
	})
	assertNotFound(t, err)
}

// 完了操作がstatusをcompletedに設定することを検証
func TestService_Complete(t *testing.T) {
	repo := &mockEventRepo{
		setStatusOwnedFn: func(ctx context.Context, eventID, ownerID string, status model.EventStatus) (*model.Event, error) {
			if status != model.EventStatusCompleted {
				t.Errorf("status = %q, want completed", status)
			}
			return &model.Event{ID: eventID, OwnerID: ownerID, Status: status}, nil
		},
	}

	svc := newTestService(repo)
	event, err := svc.Complete(context.Background(), "event-1", "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Status != model.EventStatusCompleted {
		t.Errorf("status = %q", event.Status)
	}
}

// 完了済みイベントの再完了が成功する（冪等）ことを検証
func TestService_Complete_AlreadyCompleted(t *testing.T) {
	repo := &mockEventRepo{
		setStatusOwnedFn: func(ctx context.Context, eventID, ownerID string, status model.EventStatus) (*model.Event, error) {
			// ストレージ層は既存statusに関係なく無条件で設定する
			return &model.Event{ID: eventID, OwnerID: ownerID, Status: model.EventStatusCompleted, CreatedAt: time.Now()}, nil
		},
	}

	svc := newTestService(repo)
	event, err := svc.Complete(context.Background(), "event-1", "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Status != model.EventStatusCompleted {
		t.Errorf("status = %q, want completed", event.Status)
	}
}

// 所有していないイベントの完了が404になることを検証
func TestService_Complete_NotOwned(t *testing.T) {
	svc := newTestService(&mockEventRepo{})
	_, err := svc.Complete(context.Background(), "event-1", "other-user")
	assertNotFound(t, err)
}

// 削除が削除行を確認し、存在しないIDでは404になることを検証
func TestService_Delete(t *testing.T) {
	repo := &mockEventRepo{
		deleteOwnedFn: func(ctx context.Context, eventID, ownerID string) (*model.Event, error) {
			if eventID == "event-1" && ownerID == "owner-1" {
				return &model.Event{ID: eventID, OwnerID: ownerID}, nil
			}
			return nil, nil
		},
	}

	svc := newTestService(repo)
	if err := svc.Delete(context.Background(), "event-1", "owner-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := svc.Delete(context.Background(), "missing", "owner-1")
	assertNotFound(t, err)
}
