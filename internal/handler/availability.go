package handler

import (
	"context"
	"net/http"
	"skillbridge/internal/api"
	"skillbridge/internal/logging"
	"skillbridge/internal/mutation"
	"skillbridge/internal/view"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	slotAdded        = "Slot added"
	slotAddFailed    = "Failed to add slot"
	slotRemoved      = "Slot removed"
	slotRemoveFailed = "Failed to remove slot"
	availabilityPath = "/tutor/availability"
	formDateLayout   = "2006-01-02"
	formClockLayout  = "15:04"
)

type AvailabilityAPI interface {
	ListMyAvailability(ctx context.Context) ([]api.AvailabilitySlot, error)
	CreateAvailabilitySlot(ctx context.Context, payload api.CreateAvailabilityPayload) (*api.AvailabilitySlot, error)
	DeleteAvailabilitySlot(ctx context.Context, slotID string) error
	GetMyStats(ctx context.Context) (*api.TutorStatsResponse, error)
}

type AvailabilityHandler struct {
	api      AvailabilityAPI
	cache    Cache
	pages    *Pages
	validate *validator.Validate
	location *time.Location
}

// NewAvailabilityHandler reads form dates and times in loc.
func NewAvailabilityHandler(a AvailabilityAPI, cache Cache, pages *Pages, validate *validator.Validate, loc *time.Location) *AvailabilityHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityHandler{api: a, cache: cache, pages: pages, validate: validate, location: loc}
}

func (h *AvailabilityHandler) RegisterRoutes(r chi.Router) {
	r.Get("/availability", h.List)
	r.Post("/availability", h.Create)
	r.Post("/availability/{slotId}/delete", h.Delete)
}

type slotInput struct {
	Date      string `form:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `form:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `form:"endTime" validate:"required,datetime=15:04"`
}

var slotMessages = fieldMessages{
	"date.required":      "Date is required",
	"date":               "Use the YYYY-MM-DD format",
	"startTime.required": "Start time is required",
	"startTime":          "Use the HH:MM format",
	"endTime.required":   "End time is required",
	"endTime":            "Use the HH:MM format",
}

func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.AvailabilityPage{})
}

func (h *AvailabilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, view.AvailabilityPage{Errors: view.FormErrors{"": "Invalid form"}})
		return
	}

	in := slotInput{
		Date:      strings.TrimSpace(r.PostFormValue("date")),
		StartTime: strings.TrimSpace(r.PostFormValue("startTime")),
		EndTime:   strings.TrimSpace(r.PostFormValue("endTime")),
	}
	page := view.AvailabilityPage{Form: api.CreateAvailabilityPayload{Date: in.Date, StartTime: in.StartTime, EndTime: in.EndTime}}
	if page.Errors = validateForm(h.validate, in, slotMessages); page.Errors != nil {
		h.render(w, r, http.StatusUnprocessableEntity, page)
		return
	}

	payload, err := slotPayload(in, h.location)
	if err != nil {
		page.Errors = view.FormErrors{"endTime": "End time must be after start time"}
		h.render(w, r, http.StatusUnprocessableEntity, page)
		return
	}

	var created *api.AvailabilitySlot
	n := h.pages.notifier(w, r)
	refresh := func() {
		profileID := ""
		if created != nil {
			profileID = created.TutorProfileID
		}
		h.forgetPublicProfile(ctx, profileID)
	}
	err = mutation.Run(ctx, n, refresh, slotAdded, slotAddFailed, func(ctx context.Context) error {
		var err error
		created, err = h.api.CreateAvailabilitySlot(ctx, payload)
		return err
	})
	if err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "slot not created", zap.Error(err))
		}
	}
	h.pages.finish(w, r, n, availabilityPath)
}

func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slotID, err := parsePathParam(r, "slotId")
	if err != nil {
		writeErrorJSON(w, mapErr(err), "missing slot id")
		return
	}

	n := h.pages.notifier(w, r)
	refresh := func() { h.forgetPublicProfile(ctx, "") }
	err = mutation.Run(ctx, n, refresh, slotRemoved, slotRemoveFailed, func(ctx context.Context) error {
		return h.api.DeleteAvailabilitySlot(ctx, slotID)
	})
	if err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "slot not removed", zap.String("slot_id", slotID), zap.Error(err))
		}
	}
	h.pages.finish(w, r, n, availabilityPath)
}

// forgetPublicProfile drops the cached public profile, whose slot list just
// changed. Without profileID it is looked up from the tutor's stats.
func (h *AvailabilityHandler) forgetPublicProfile(ctx context.Context, profileID string) {
	if profileID == "" {
		stats, err := h.api.GetMyStats(ctx)
		if err != nil {
			if logger, ok := logging.GetFromContext(ctx); ok {
				logger.Warn(ctx, "public profile cache not cleared", zap.Error(err))
			}
			return
		}
		profileID = stats.TutorProfile.ID
	}
	if profileID != "" {
		h.cache.Delete(ctx, buildTutorKey(profileID))
	}
}

func (h *AvailabilityHandler) render(w http.ResponseWriter, r *http.Request, status int, page view.AvailabilityPage) {
	ctx := r.Context()
	slots, err := h.api.ListMyAvailability(ctx)
	if err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "availability unavailable", zap.Error(err))
		}
		page.Failed = true
	}
	page.Slots = slots
	h.pages.Render(w, r, status, "availability", "Availability", page)
}

// slotPayload reads the form's date and times in loc and turns them into the
// UTC timestamps the API stores.
func slotPayload(in slotInput, loc *time.Location) (api.CreateAvailabilityPayload, error) {
	day, err := time.ParseInLocation(formDateLayout, in.Date, loc)
	if err != nil {
		return api.CreateAvailabilityPayload{}, err
	}
	start, err := time.Parse(formClockLayout, in.StartTime)
	if err != nil {
		return api.CreateAvailabilityPayload{}, err
	}
	end, err := time.Parse(formClockLayout, in.EndTime)
	if err != nil {
		return api.CreateAvailabilityPayload{}, err
	}
	if !end.After(start) {
		return api.CreateAvailabilityPayload{}, ErrBadRequest
	}

	at := func(clock time.Time) string {
		return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc).UTC().Format(time.RFC3339)
	}
	return api.CreateAvailabilityPayload{
		Date:      day.UTC().Format(time.RFC3339),
		StartTime: at(start),
		EndTime:   at(end),
	}, nil
}
