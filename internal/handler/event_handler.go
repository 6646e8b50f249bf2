package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/eventman/internal/event"
	"github.com/hitoshi/eventman/internal/middleware"
	"github.com/hitoshi/eventman/internal/model"
	"github.com/hitoshi/eventman/internal/validation"
)

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	List(ctx context.Context, ownerID string) ([]*model.Event, error)
	Get(ctx context.Context, eventID, ownerID string) (*model.Event, error)
	Create(ctx context.Context, ownerID string, params event.Params) (*model.Event, error)
	Update(ctx context.Context, eventID, ownerID string, params event.Params) (*model.Event, error)
	Complete(ctx context.Context, eventID, ownerID string) (*model.Event, error)
	Delete(ctx context.Context, eventID, ownerID string) error
}

// EventHandler はイベント管理のHTTPハンドラー。
type EventHandler struct {
	service   EventServiceInterface
	validator *validation.Validator
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(service EventServiceInterface, validator *validation.Validator) *EventHandler {
	return &EventHandler{
		service:   service,
		validator: validator,
	}
}

// List は呼び出し元の全イベントを新しい順で返す。
// GET /api/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewUnauthorizedError())
		return
	}

	events, err := h.service.List(r.Context(), identity.ID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if events == nil {
		events = []*model.Event{}
	}

	middleware.WriteJSON(w, http.StatusOK, events)
}

// Create は新規イベントを作成する。
// POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewUnauthorizedError())
		return
	}

	input, ok := h.decodeEventInput(w, r)
	if !ok {
		return
	}

	if _, err := h.service.Create(r.Context(), identity.ID, event.Params{
		Title:   input.Title,
		Content: input.Content,
		Date:    input.Date,
	}); err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]any{
		"status":  http.StatusCreated,
		"message": "Event created successfully",
	})
}

// Get は単一イベントを取得する。
// GET /api/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewUnauthorizedError())
		return
	}

	eventID := chi.URLParam(r, "id")
	if eventID == "" {
		middleware.WriteError(w, model.NewEventIDRequiredError())
		return
	}

	found, err := h.service.Get(r.Context(), eventID, identity.ID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, found)
}

// Update はイベントの可変フィールドを置き換える。
// PATCH /api/events/{id}/edit
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewUnauthorizedError())
		return
	}

	eventID := chi.URLParam(r, "id")
	if eventID == "" {
		middleware.WriteError(w, model.NewEventIDRequiredError())
		return
	}

	input, ok := h.decodeEventInput(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), eventID, identity.ID, event.Params{
		Title:   input.Title,
		Content: input.Content,
		Date:    input.Date,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, updated)
}

// Complete はイベントをcompletedにする。既にcompletedでも成功する。
// PATCH /api/events/{id}/complete
func (h *EventHandler) Complete(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewUnauthorizedError())
		return
	}

	eventID := chi.URLParam(r, "id")
	if eventID == "" {
		middleware.WriteError(w, model.NewEventIDRequiredError())
		return
	}

	if _, err := h.service.Complete(r.Context(), eventID, identity.ID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Success",
	})
}

// Delete はイベントを完全に削除する。
// DELETE /api/events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewUnauthorizedError())
		return
	}

	eventID := chi.URLParam(r, "id")
	if eventID == "" {
		middleware.WriteError(w, model.NewEventIDRequiredError())
		return
	}

	if err := h.service.Delete(r.Context(), eventID, identity.ID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Success",
	})
}

// decodeEventInput はイベントペイロードをデコード・検証する。
// 失敗時はレスポンスを書き込み、falseを返す。
func (h *EventHandler) decodeEventInput(w http.ResponseWriter, r *http.Request) (validation.EventInput, bool) {
	var input validation.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, model.NewBadRequestError("Invalid request payload"))
		return input, false
	}

	if msgs := h.validator.ValidateEvent(input); msgs != nil {
		middleware.WriteError(w, model.NewValidationError(msgs))
		return input, false
	}

	return input, true
}
