package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"skillbridge/internal/api"
	"skillbridge/internal/dashboard"
	"skillbridge/internal/logging"
	"skillbridge/internal/mutation"
	"skillbridge/internal/session"
	"skillbridge/internal/view"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"
)

func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type mockCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.store[key]
	return v, ok
}

func (m *mockCache) Set(_ context.Context, key string, data []byte, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = data
}

func (m *mockCache) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
}

func strPtr(s string) *string { return &s }

// fakeAPI is an in-memory stand-in for the backend. Sessions are cookies
// named "session" whose value is the user's role in lower case.
type fakeAPI struct {
	t      *testing.T
	server *httptest.Server

	mu             sync.Mutex
	bookings       []api.Booking
	slots          []api.AvailabilitySlot
	statsFail      bool
	statusFail     bool
	profileFail    bool
	slotFail       bool
	categoryCalls  int
	statsCalls     int
	statusRequests []string
	profileBodies  []map[string]any
	slotBodies     []api.CreateAvailabilityPayload
	deletedSlots   []string
	tutorQueries   []url.Values
	lastCookies    []string
}

var fakeUsers = map[string]api.User{
	"tutor":   {ID: "u-tutor", Name: "Ada Lovelace", Email: "ada@example.com", Role: api.RoleTutor},
	"student": {ID: "u-student", Name: "Grace", Email: "grace@example.com", Role: api.RoleStudent},
	"admin":   {ID: "u-admin", Name: "Root", Email: "root@example.com", Role: api.RoleAdmin},
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{
		t: t,
		bookings: []api.Booking{
			{
				ID:      "b1",
				Status:  api.BookingPending,
				Slot:    api.AvailabilitySlot{Date: "2026-03-05T00:00:00Z", StartTime: "2026-03-05T09:00:00Z", EndTime: "2026-03-05T10:00:00Z"},
				Student: api.BookingStudent{Name: strPtr("Grace"), Email: "grace@example.com"},
			},
		},
		slots: []api.AvailabilitySlot{
			{ID: "s1", Date: "2026-03-06T00:00:00Z", StartTime: "2026-03-06T09:00:00Z", EndTime: "2026-03-06T10:00:00Z"},
		},
	}

	r := chi.NewRouter()
	r.Get("/api/auth/me", f.me)
	r.Post("/api/auth/login", f.login)
	r.Post("/api/auth/register", f.register)
	r.Post("/api/auth/logout", f.logout)
	r.Get("/api/tutors", f.listTutors)
	r.Get("/api/tutors/me/stats", f.stats)
	r.Put("/api/tutors/me", f.updateProfile)
	r.Get("/api/tutors/{id}", f.getTutor)
	r.Get("/api/categories", f.categories)
	r.Get("/api/tutor/availability", f.listSlots)
	r.Post("/api/tutor/availability", f.createSlot)
	r.Delete("/api/tutor/availability/{slotId}", f.deleteSlot)
	r.Put("/api/bookings/{id}/status", f.updateStatus)

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) client() *api.Client {
	return api.NewClient(f.server.URL)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) userFor(r *http.Request) (api.User, bool) {
	c, err := r.Cookie("session")
	if err != nil {
		return api.User{}, false
	}
	u, ok := fakeUsers[c.Value]
	return u, ok
}

func (f *fakeAPI) requireTutor(w http.ResponseWriter, r *http.Request) bool {
	f.mu.Lock()
	f.lastCookies = append(f.lastCookies, r.Header.Get("Cookie"))
	f.mu.Unlock()

	u, ok := f.userFor(r)
	if !ok || u.Role != api.RoleTutor {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return false
	}
	return true
}

func (f *fakeAPI) me(w http.ResponseWriter, r *http.Request) {
	u, ok := f.userFor(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": u})
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
	if req.Password != "correct-horse" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}
	role, _, _ := strings.Cut(req.Email, "@")
	http.SetCookie(w, &http.Cookie{Name: "session", Value: role, Domain: "api.example.com", Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]string{"email": req.Email}})
}

func (f *fakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
	if strings.HasPrefix(req.Email, "taken") {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
		return
	}
	if !strings.HasPrefix(req.Email, "nosession") {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: strings.ToLower(req.Role), Path: "/"})
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]string{"email": req.Email}})
}

func (f *fakeAPI) logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (f *fakeAPI) tutorProfile() api.TutorProfile {
	return api.TutorProfile{
		ID:           "t1",
		UserID:       "u-tutor",
		Bio:          strPtr("Calculus and algebra"),
		HourlyRate:   40,
		Experience:   3,
		CategoryID:   "c1",
		Rating:       4.75,
		TotalReviews: 1,
		User:         api.TutorUser{ID: "u-tutor", Name: strPtr("Ada Lovelace")},
		Category:     api.Category{ID: "c1", Name: "Math"},
		Availability: []api.AvailabilitySlot{
			{ID: "s1", Date: "2026-03-06T00:00:00Z", StartTime: "2026-03-06T09:00:00Z", EndTime: "2026-03-06T10:00:00Z"},
			{ID: "s2", Date: "2026-03-07T00:00:00Z", StartTime: "2026-03-07T09:00:00Z", EndTime: "2026-03-07T10:00:00Z", IsBooked: true},
		},
		Reviews: []api.Review{{ID: "r1", Rating: "4.50", Comment: strPtr("Great tutor"), CreatedAt: "2026-02-02T10:00:00Z"}},
	}
}

func (f *fakeAPI) listTutors(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.tutorQueries = append(f.tutorQueries, r.URL.Query())
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, api.TutorsResponse{
		Tutors:     []api.TutorProfile{f.tutorProfile()},
		Pagination: api.Pagination{TotalTutors: 13, Page: 1, Limit: 12, TotalPages: 2},
	})
}

func (f *fakeAPI) getTutor(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "id") != "t1" {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Tutor not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": f.tutorProfile()})
}

func (f *fakeAPI) categories(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	f.categoryCalls++
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"categories": []api.Category{{ID: "c1", Name: "Math"}, {ID: "c2", Name: "Physics"}}})
}

func (f *fakeAPI) stats(w http.ResponseWriter, r *http.Request) {
	if !f.requireTutor(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	if f.statsFail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "stats unavailable"})
		return
	}

	upcoming := 0
	for _, b := range f.bookings {
		if b.Status.Actionable() {
			upcoming++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": api.TutorStatsResponse{
		Stats:          api.TutorStats{TotalSessions: len(f.bookings), Upcoming: upcoming, Rating: 4.75, TotalReviews: 1, AvailableSlots: len(f.slots)},
		TutorProfile:   f.tutorProfile(),
		RecentBookings: append([]api.Booking(nil), f.bookings...),
		RecentReviews:  []api.Review{},
	}})
}

func (f *fakeAPI) updateProfile(w http.ResponseWriter, r *http.Request) {
	if !f.requireTutor(w, r) {
		return
	}
	var body map[string]any
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileBodies = append(f.profileBodies, body)
	if f.profileFail {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid category"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": f.tutorProfile()})
}

func (f *fakeAPI) listSlots(w http.ResponseWriter, r *http.Request) {
	if !f.requireTutor(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": f.slots})
}

func (f *fakeAPI) createSlot(w http.ResponseWriter, r *http.Request) {
	if !f.requireTutor(w, r) {
		return
	}
	var body api.CreateAvailabilityPayload
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.slotBodies = append(f.slotBodies, body)
	if f.slotFail {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Slot overlaps"})
		return
	}
	slot := api.AvailabilitySlot{ID: "s-new", TutorProfileID: "t1", Date: body.Date, StartTime: body.StartTime, EndTime: body.EndTime}
	f.slots = append(f.slots, slot)
	writeJSON(w, http.StatusCreated, map[string]any{"data": slot})
}

func (f *fakeAPI) deleteSlot(w http.ResponseWriter, r *http.Request) {
	if !f.requireTutor(w, r) {
		return
	}
	id := chi.URLParam(r, "slotId")

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.slots {
		if s.ID == id {
			f.slots = append(f.slots[:i], f.slots[i+1:]...)
			f.deletedSlots = append(f.deletedSlots, id)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Slot not found"})
}

func (f *fakeAPI) updateStatus(w http.ResponseWriter, r *http.Request) {
	if !f.requireTutor(w, r) {
		return
	}
	body, err := io.ReadAll(r.Body)
	require.NoError(f.t, err)
	var req struct {
		Status api.BookingStatus `json:"status"`
	}
	require.NoError(f.t, json.Unmarshal(body, &req))
	id := chi.URLParam(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusRequests = append(f.statusRequests, id+":"+string(req.Status))
	if f.statusFail {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid status transition"})
		return
	}
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			f.bookings[i].Status = req.Status
			writeJSON(w, http.StatusOK, map[string]any{"data": f.bookings[i]})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Booking not found"})
}

// locked runs fn with the fake's state locked, to change or inspect it.
func (f *fakeAPI) locked(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeAPI) statusCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.statusRequests...)
}

func (f *fakeAPI) statsCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statsCalls
}

func (f *fakeAPI) forwardedCookies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lastCookies...)
}

// app is the whole web front wired against a fakeAPI.
type app struct {
	api     *fakeAPI
	cache   *mockCache
	store   *dashboard.Store[api.TutorStatsResponse]
	flashes sessions.Store
	handler http.Handler
}

func newApp(t *testing.T) *app {
	t.Helper()
	fake := newFakeAPI(t)
	client := fake.client()

	renderer, err := view.New(time.UTC)
	require.NoError(t, err)

	flashes := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	pages := NewPages(renderer, flashes)
	cache := newMockCache()
	validate := NewValidator()
	resolver := session.NewResolver(client)
	store := dashboard.NewStore[api.TutorStatsResponse](client.GetMyStats, time.Hour)

	rt := Router{
		Logger:       logging.NewNop(),
		Resolver:     resolver,
		Pages:        pages,
		Auth:         NewAuthHandler(client, resolver, pages, validate, store),
		Tutors:       NewTutorsHandler(client, cache, time.Minute, pages),
		Dashboard:    NewDashboardHandler(store, mutation.NewBookingStatusMutator(client), cache, pages),
		Profile:      NewProfileHandler(client, cache, time.Minute, pages, validate),
		Availability: NewAvailabilityHandler(client, cache, pages, validate, time.UTC),
	}

	return &app{api: fake, cache: cache, store: store, flashes: flashes, handler: rt.Handler()}
}

type reqOpt func(r *http.Request)

func asUser(role string) reqOpt {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "session", Value: role})
	}
}

func htmx(r *http.Request) {
	r.Header.Set("HX-Request", "true")
}

func (a *app) do(method, target string, form url.Values, opts ...reqOpt) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	r := httptest.NewRequest(method, target, body)
	if form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, opt := range opts {
		opt(r)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, r)
	return w
}
