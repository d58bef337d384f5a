package handler

import (
	"context"
	"net/http"
	"net/url"
	"skillbridge/internal/api"
	"skillbridge/internal/logging"
	"skillbridge/internal/view"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const tutorsPageSize = 12

type TutorsAPI interface {
	ListTutors(ctx context.Context, q api.TutorsQuery) (*api.TutorsResponse, error)
	GetTutor(ctx context.Context, id string) (*api.TutorProfile, error)
	ListCategories(ctx context.Context) ([]api.Category, error)
}

// TutorsHandler serves the public tutor directory.
type TutorsHandler struct {
	api   TutorsAPI
	cache Cache
	ttl   time.Duration
	pages *Pages
}

func NewTutorsHandler(a TutorsAPI, cache Cache, ttl time.Duration, pages *Pages) *TutorsHandler {
	return &TutorsHandler{api: a, cache: cache, ttl: ttl, pages: pages}
}

func (h *TutorsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tutors", h.ListTutors)
	r.Get("/tutors/{id}", h.GetTutor)
}

func (h *TutorsHandler) ListTutors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	data := view.TutorsList{
		Search:     strings.TrimSpace(q.Get("search")),
		CategoryID: q.Get("categoryId"),
		MinPrice:   q.Get("minPrice"),
		MaxPrice:   q.Get("maxPrice"),
	}
	query := parseTutorsQuery(q)

	categories, err := h.categories(ctx)
	if err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "categories unavailable", zap.Error(err))
		}
	}
	data.Categories = categories

	resp, err := h.api.ListTutors(ctx, query)
	if err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Error(ctx, "list tutors failed", zap.Error(err))
		}
		data.Failed = true
		h.pages.Render(w, r, mapErr(err), "tutors", "Tutors", data)
		return
	}

	data.Result = resp
	data.PrevURL, data.NextURL = pageLinks(r.URL, resp.Pagination)
	h.pages.Render(w, r, http.StatusOK, "tutors", "Tutors", data)
}

func (h *TutorsHandler) GetTutor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parsePathParam(r, "id")
	if err != nil {
		h.pages.NotFound(w, r)
		return
	}

	tutor, err := cached(ctx, h.cache, buildTutorKey(id), h.ttl, func(ctx context.Context) (*api.TutorProfile, error) {
		return h.api.GetTutor(ctx, id)
	})
	if err != nil {
		if api.IsNotFound(err) {
			h.pages.NotFound(w, r)
			return
		}
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Error(ctx, "get tutor failed", zap.String("tutor_id", id), zap.Error(err))
		}
		h.pages.Failed(w, r, err)
		return
	}

	title := "Tutor"
	if tutor.User.Name != nil {
		title = *tutor.User.Name
	}
	h.pages.Render(w, r, http.StatusOK, "tutor_detail", title, view.TutorDetail{
		Tutor: tutor,
		Slots: openSlots(tutor.Availability),
	})
}

func (h *TutorsHandler) categories(ctx context.Context) ([]api.Category, error) {
	return cached(ctx, h.cache, categoriesKey, h.ttl, h.api.ListCategories)
}

// parseTutorsQuery ignores malformed numbers instead of failing the page.
func parseTutorsQuery(q url.Values) api.TutorsQuery {
	query := api.TutorsQuery{
		Search:     strings.TrimSpace(q.Get("search")),
		CategoryID: q.Get("categoryId"),
		Page:       1,
		Limit:      tutorsPageSize,
	}
	if v, ok := optionalFloat(q.Get("minPrice")); ok && v != nil && *v >= 0 {
		query.MinPrice = v
	}
	if v, ok := optionalFloat(q.Get("maxPrice")); ok && v != nil && *v >= 0 {
		query.MaxPrice = v
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		query.Page = page
	}
	return query
}

func pageLinks(u *url.URL, p api.Pagination) (prev, next string) {
	link := func(page int) string {
		q := u.Query()
		q.Set("page", strconv.Itoa(page))
		return u.Path + "?" + q.Encode()
	}
	if p.Page > 1 {
		prev = link(p.Page - 1)
	}
	if p.Page < p.TotalPages {
		next = link(p.Page + 1)
	}
	return prev, next
}

func openSlots(slots []api.AvailabilitySlot) []api.AvailabilitySlot {
	open := make([]api.AvailabilitySlot, 0, len(slots))
	for _, s := range slots {
		if !s.IsBooked {
			open = append(open, s)
		}
	}
	return open
}
