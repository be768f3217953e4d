package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"toastd/internal/dispatch"
	"toastd/internal/domain"
	"toastd/internal/toast"
)

// Poster posts one ad-hoc toast and starts its lifecycle.
// Params: toast descriptor.
// Returns: created entry.
type Poster interface {
	Post(descriptor domain.ToastDescriptor) toast.Entry
}

// BadgeReader reads the unread badge value.
// Params: none.
// Returns: last known unread count.
type BadgeReader interface {
	Count() int
}

// Handler exposes the toast queue and badge to the application shell.
// Params: queue, lifecycle controller, poster, dispatcher, and badge.
// Returns: HTTP surface for listing, posting, interacting, and invoking.
type Handler struct {
	queue      *toast.Queue
	controller *toast.Controller
	poster     Poster
	dispatcher *dispatch.Dispatcher
	badge      BadgeReader
	logger     *slog.Logger
}

// NewHandler creates the local HTTP surface handler.
// Params: queue, controller, poster, dispatcher, badge, and logger.
// Returns: initialized handler.
func NewHandler(queue *toast.Queue, controller *toast.Controller, poster Poster, dispatcher *dispatch.Dispatcher, badge BadgeReader, logger *slog.Logger) *Handler {
	return &Handler{
		queue:      queue,
		controller: controller,
		poster:     poster,
		dispatcher: dispatcher,
		badge:      badge,
		logger:     logger,
	}
}

// Register attaches all routes to the mux.
// Params: HTTP mux.
// Returns: none.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /toasts", h.listToasts)
	mux.HandleFunc("POST /toasts", h.postToast)
	mux.HandleFunc("DELETE /toasts", h.clearToasts)
	mux.HandleFunc("DELETE /toasts/{id}", h.removeToast)
	mux.HandleFunc("POST /toasts/{id}/pause", h.pauseToast)
	mux.HandleFunc("POST /toasts/{id}/resume", h.resumeToast)
	mux.HandleFunc("POST /toasts/{id}/close", h.closeToast)
	mux.HandleFunc("POST /toasts/{id}/actions/{index}", h.invokeAction)
	mux.HandleFunc("GET /badge", h.readBadge)
}

// listToasts returns live entries, optionally filtered by position.
// Params: optional position query parameter.
// Returns: JSON toast list in insertion order.
func (h *Handler) listToasts(writer http.ResponseWriter, request *http.Request) {
	position := domain.Position(request.URL.Query().Get("position"))
	writeJSON(writer, http.StatusOK, map[string]any{
		"toasts": h.queue.List(position),
	})
}

// postToast creates one ad-hoc toast from the request body.
// Ad-hoc confirmations default to the synchronous top-center slot.
// Params: JSON toast descriptor body.
// Returns: created entry with assigned id.
func (h *Handler) postToast(writer http.ResponseWriter, request *http.Request) {
	var descriptor domain.ToastDescriptor
	if err := json.NewDecoder(request.Body).Decode(&descriptor); err != nil {
		http.Error(writer, "invalid toast payload", http.StatusBadRequest)
		return
	}
	if descriptor.Message == "" {
		http.Error(writer, "message is required", http.StatusBadRequest)
		return
	}
	if descriptor.Severity == "" {
		descriptor.Severity = domain.SeverityInfo
	}
	if descriptor.Position == "" {
		descriptor.Position = domain.PositionTopCenter
	}
	// Ad-hoc toasts never carry bound commands; actions come only from
	// classification of pushed alarms.
	descriptor.Actions = nil

	entry := h.poster.Post(descriptor)
	writeJSON(writer, http.StatusCreated, entry)
}

// clearToasts empties the queue.
// Params: none.
// Returns: 204.
func (h *Handler) clearToasts(writer http.ResponseWriter, _ *http.Request) {
	h.queue.Clear()
	writer.WriteHeader(http.StatusNoContent)
}

// removeToast removes one entry; unknown ids still return 204.
// Params: id path value.
// Returns: 204.
func (h *Handler) removeToast(writer http.ResponseWriter, request *http.Request) {
	h.queue.Remove(request.PathValue("id"))
	writer.WriteHeader(http.StatusNoContent)
}

// pauseToast holds one toast's countdown.
// Params: id path value.
// Returns: 204.
func (h *Handler) pauseToast(writer http.ResponseWriter, request *http.Request) {
	h.controller.Pause(request.PathValue("id"))
	writer.WriteHeader(http.StatusNoContent)
}

// resumeToast restarts one toast's countdown with a full duration.
// Params: id path value.
// Returns: 204.
func (h *Handler) resumeToast(writer http.ResponseWriter, request *http.Request) {
	h.controller.Resume(request.PathValue("id"))
	writer.WriteHeader(http.StatusNoContent)
}

// closeToast begins the closing transition immediately.
// Params: id path value.
// Returns: 204.
func (h *Handler) closeToast(writer http.ResponseWriter, request *http.Request) {
	h.controller.Close(request.PathValue("id"))
	writer.WriteHeader(http.StatusNoContent)
}

// invokeAction executes one inline action of a live toast.
// The dispatcher removes the toast and reports the outcome as a new toast,
// so the response only acknowledges acceptance.
// Params: id and action index path values.
// Returns: 202 on acceptance, 404/400 for unknown toast or index.
func (h *Handler) invokeAction(writer http.ResponseWriter, request *http.Request) {
	entry, ok := h.queue.Get(request.PathValue("id"))
	if !ok {
		http.Error(writer, "toast not found", http.StatusNotFound)
		return
	}
	index, err := strconv.Atoi(request.PathValue("index"))
	if err != nil || index < 0 || index >= len(entry.Actions) {
		http.Error(writer, "invalid action index", http.StatusBadRequest)
		return
	}

	action := entry.Actions[index]
	go h.dispatcher.Invoke(context.Background(), entry.ID, action)
	writer.WriteHeader(http.StatusAccepted)
}

// readBadge returns the unread badge value.
// Params: none.
// Returns: JSON count payload.
func (h *Handler) readBadge(writer http.ResponseWriter, _ *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]int{"count": h.badge.Count()})
}

// writeJSON renders one JSON response body.
// Params: response writer, status code, and payload.
// Returns: none.
func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}
