package handler

import (
	"context"
	"net/http"
	"skillbridge/internal/api"
	"skillbridge/internal/logging"
	"skillbridge/internal/mutation"
	"skillbridge/internal/view"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	profileUpdated      = "Profile updated"
	profileUpdateFailed = "Failed to update profile"
)

type ProfileAPI interface {
	GetMyStats(ctx context.Context) (*api.TutorStatsResponse, error)
	UpdateMyProfile(ctx context.Context, payload api.UpdateTutorProfilePayload) (*api.TutorProfile, error)
	ListCategories(ctx context.Context) ([]api.Category, error)
}

type ProfileHandler struct {
	api      ProfileAPI
	cache    Cache
	ttl      time.Duration
	pages    *Pages
	validate *validator.Validate
}

func NewProfileHandler(a ProfileAPI, cache Cache, ttl time.Duration, pages *Pages, validate *validator.Validate) *ProfileHandler {
	return &ProfileHandler{api: a, cache: cache, ttl: ttl, pages: pages, validate: validate}
}

func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/profile", h.Edit)
	r.Post("/profile", h.Update)
}

type profileInput struct {
	Bio        *string  `form:"bio" validate:"omitempty,max=2000"`
	HourlyRate *float64 `form:"hourlyRate" validate:"omitempty,gte=0,lte=10000"`
	Experience *int     `form:"experience" validate:"omitempty,gte=0,lte=80"`
	CategoryID *string  `form:"categoryId" validate:"omitempty,max=64"`
}

var profileMessages = fieldMessages{
	"bio":        "Bio is too long",
	"hourlyRate": "Enter a rate between 0 and 10000",
	"experience": "Enter whole years between 0 and 80",
	"categoryId": "Unknown category",
}

func (h *ProfileHandler) Edit(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, nil)
}

// Update sends only the fields the tutor filled in.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, view.FormErrors{"": "Invalid form"})
		return
	}

	in := profileInput{
		Bio:        optionalString(r.PostFormValue("bio")),
		CategoryID: optionalString(r.PostFormValue("categoryId")),
	}
	errs := view.FormErrors{}
	var ok bool
	if in.HourlyRate, ok = optionalFloat(r.PostFormValue("hourlyRate")); !ok {
		errs["hourlyRate"] = "Must be a number"
	}
	if in.Experience, ok = optionalInt(r.PostFormValue("experience")); !ok {
		errs["experience"] = "Must be a whole number"
	}
	for field, msg := range validateForm(h.validate, in, profileMessages) {
		if _, seen := errs[field]; !seen {
			errs[field] = msg
		}
	}
	if len(errs) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, errs)
		return
	}

	payload := api.UpdateTutorProfilePayload{
		Bio:        in.Bio,
		HourlyRate: in.HourlyRate,
		Experience: in.Experience,
		CategoryID: in.CategoryID,
	}

	var updated *api.TutorProfile
	n := h.pages.notifier(w, r)
	refresh := func() {
		if updated != nil {
			h.cache.Delete(ctx, buildTutorKey(updated.ID))
		}
	}
	err := mutation.Run(ctx, n, refresh, profileUpdated, profileUpdateFailed, func(ctx context.Context) error {
		var err error
		updated, err = h.api.UpdateMyProfile(ctx, payload)
		return err
	})
	if err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "profile not updated", zap.Error(err))
		}
	}

	h.pages.finish(w, r, n, "/tutor/profile")
}

func (h *ProfileHandler) render(w http.ResponseWriter, r *http.Request, status int, errs view.FormErrors) {
	ctx := r.Context()
	form := view.ProfileForm{Errors: errs}

	if stats, err := h.api.GetMyStats(ctx); err == nil {
		form.Profile = &stats.TutorProfile
	} else if logger, ok := logging.GetFromContext(ctx); ok {
		logger.Info(ctx, "no tutor profile to prefill", zap.Error(err))
	}

	categories, err := cached(ctx, h.cache, categoriesKey, h.ttl, h.api.ListCategories)
	if err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "categories unavailable", zap.Error(err))
		}
	}
	form.Categories = categories

	h.pages.Render(w, r, status, "profile", "Profile", form)
}
