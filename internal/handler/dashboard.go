package handler

import (
	"context"
	"net/http"
	"skillbridge/internal/api"
	"skillbridge/internal/dashboard"
	"skillbridge/internal/logging"
	"skillbridge/internal/mutation"
	"skillbridge/internal/session"
	"skillbridge/internal/view"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RefreshEvent makes the dashboard fragment reload itself.
const RefreshEvent = "dashboard-refresh"

// DashboardHandler serves the tutor dashboard and the booking status action.
type DashboardHandler struct {
	store   *dashboard.Store[api.TutorStatsResponse]
	mutator *mutation.BookingStatusMutator
	cache   Cache
	pages   *Pages
}

func NewDashboardHandler(store *dashboard.Store[api.TutorStatsResponse], mutator *mutation.BookingStatusMutator, cache Cache, pages *Pages) *DashboardHandler {
	return &DashboardHandler{store: store, mutator: mutator, cache: cache, pages: pages}
}

// RegisterRoutes expects the tutor session and role checks to be applied by
// the caller.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Page)
	r.Get("/dashboard/content", h.Content)
	r.Post("/bookings/{id}/status", h.UpdateBookingStatus)
}

// Page renders the whole dashboard. Opening it counts as a refresh.
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	content, ok := h.load(r)
	if !ok {
		h.pages.Forbidden(w, r)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "tutor_dashboard", "Dashboard", content)
}

// Content is the htmx fragment behind the refresh event and the retry button.
func (h *DashboardHandler) Content(w http.ResponseWriter, r *http.Request) {
	content, ok := h.load(r)
	if !ok {
		h.pages.Forbidden(w, r)
		return
	}
	h.pages.Fragment(w, r, http.StatusOK, "dashboard-content", content)
}

func (h *DashboardHandler) load(r *http.Request) (view.DashboardContent, bool) {
	ctx := r.Context()
	user, ok := session.UserFromContext(ctx)
	if !ok {
		return view.DashboardContent{}, false
	}

	loader := h.store.Get(user.ID)
	if err := loader.Refresh(ctx); err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "dashboard refresh failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return view.DashboardContent{Snapshot: loader.State()}, true
}

// UpdateBookingStatus asks the API for a status change. On success the page
// reloads the dashboard from the API and the tutor's cached public profile is
// dropped, since a cancelled booking frees its slot. On failure nothing on
// screen changes.
func (h *DashboardHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n := h.pages.notifier(w, r)

	bookingID, err := parsePathParam(r, "id")
	if err != nil {
		writeErrorJSON(w, mapErr(err), "missing booking id")
		return
	}
	var status api.BookingStatus
	if err := r.ParseForm(); err == nil {
		status = api.BookingStatus(strings.ToUpper(strings.TrimSpace(r.PostFormValue("status"))))
	}
	if status == "" {
		n.Failure(mutation.StatusUpdateFailed)
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Info(ctx, "booking status missing", zap.String("booking_id", bookingID))
		}
		h.pages.finish(w, r, n, "/tutor/dashboard")
		return
	}

	refresh := func() {
		n.Trigger(RefreshEvent)
		h.forgetPublicProfile(ctx)
	}

	if err := h.mutator.SetBookingStatus(ctx, n, refresh, bookingID, status); err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "booking status not updated",
				zap.String("booking_id", bookingID),
				zap.String("status", string(status)),
				zap.Error(err),
			)
		}
	}

	h.pages.finish(w, r, n, "/tutor/dashboard")
}

// forgetPublicProfile drops the cached public profile of the signed-in
// tutor, known from the last dashboard payload.
func (h *DashboardHandler) forgetPublicProfile(ctx context.Context) {
	user, ok := session.UserFromContext(ctx)
	if !ok {
		return
	}
	state := h.store.Get(user.ID).State()
	if state.Data == nil || state.Data.TutorProfile.ID == "" {
		return
	}
	h.cache.Delete(ctx, buildTutorKey(state.Data.TutorProfile.ID))
}
