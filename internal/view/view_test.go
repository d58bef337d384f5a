package view

import (
	"net/http"
	"net/http/httptest"
	"skillbridge/internal/api"
	"skillbridge/internal/dashboard"
	"skillbridge/internal/notice"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(time.UTC)
	require.NoError(t, err)
	return r
}

func statsFixture() *api.TutorStatsResponse {
	return &api.TutorStatsResponse{
		Stats: api.TutorStats{
			TotalSessions:  12,
			Upcoming:       2,
			Completed:      9,
			TotalEarnings:  360,
			AvailableSlots: 1,
			Rating:         4.75,
			TotalReviews:   1,
		},
		TutorProfile: api.TutorProfile{
			ID:           "tp1",
			HourlyRate:   40,
			Experience:   3,
			Rating:       4.75,
			TotalReviews: 1,
			Bio:          strPtr("Calculus and algebra"),
			User:         api.TutorUser{Name: strPtr("Ada Lovelace")},
			Category:     api.Category{ID: "c1", Name: "Math"},
		},
		RecentBookings: []api.Booking{
			{
				ID:      "b1",
				Status:  api.BookingPending,
				Slot:    api.AvailabilitySlot{Date: "2026-03-05T00:00:00Z", StartTime: "2026-03-05T09:00:00Z", EndTime: "2026-03-05T10:00:00Z"},
				Student: api.BookingStudent{Name: strPtr("Grace"), Email: "grace@example.com"},
			},
			{
				ID:      "b2",
				Status:  api.BookingCompleted,
				Slot:    api.AvailabilitySlot{Date: "2026-02-01T00:00:00Z", StartTime: "2026-02-01T13:00:00Z", EndTime: "2026-02-01T14:00:00Z"},
				Student: api.BookingStudent{Email: "anon@example.com"},
			},
		},
		RecentReviews: []api.Review{
			{ID: "r1", Rating: "4.50", Comment: strPtr("Great tutor"), CreatedAt: "2026-02-02T10:00:00Z"},
		},
	}
}

func renderContent(t *testing.T, s dashboard.Snapshot[api.TutorStatsResponse]) string {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, newRenderer(t).Fragment(w, http.StatusOK, "dashboard-content", DashboardContent{Snapshot: s}))
	return w.Body.String()
}

func TestDashboardContentSuccess(t *testing.T) {
	body := renderContent(t, dashboard.Snapshot[api.TutorStatsResponse]{Data: statsFixture()})

	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "Math")
	assert.Contains(t, body, "4.8 · 1 review")
	assert.Contains(t, body, "3 yrs exp")
	assert.Contains(t, body, "$40/hr")
	assert.Contains(t, body, "1 slot available")
	assert.Contains(t, body, "Calculus and algebra")

	for _, title := range []string{"Total Sessions", "Upcoming", "Total Earnings", "Rating"} {
		assert.Contains(t, body, title)
	}
	assert.Contains(t, body, "$360")
	assert.Contains(t, body, "9 completed")
	assert.Contains(t, body, "Active")

	assert.Contains(t, body, "Mar 5, 2026")
	assert.Contains(t, body, "9:00 AM – 10:00 AM")
	assert.Contains(t, body, "Great tutor")
	assert.Contains(t, body, "4.5")
	assert.NotContains(t, body, "No tutor profile found")
	assert.NotContains(t, body, "Retry")
}

func TestDashboardContentUsesDisplayLocation(t *testing.T) {
	r, err := New(time.FixedZone("EST", -5*60*60))
	require.NoError(t, err)
	w := httptest.NewRecorder()

	snap := dashboard.Snapshot[api.TutorStatsResponse]{Data: statsFixture()}
	require.NoError(t, r.Fragment(w, http.StatusOK, "dashboard-content", DashboardContent{Snapshot: snap}))

	body := w.Body.String()
	assert.Contains(t, body, "Time (EST)")
	assert.Contains(t, body, "4:00 AM – 5:00 AM")
	assert.Contains(t, body, "Mar 4, 2026")
}

func TestDashboardContentActionsOnlyForOpenBookings(t *testing.T) {
	body := renderContent(t, dashboard.Snapshot[api.TutorStatsResponse]{Data: statsFixture()})

	assert.Contains(t, body, `hx-post="/tutor/bookings/b1/status"`)
	assert.NotContains(t, body, `/tutor/bookings/b2/status`)
	assert.Contains(t, body, `data-status="PENDING">Pending`)
	assert.Contains(t, body, `data-status="COMPLETED">Completed`)
	assert.Contains(t, body, "Student")
}

func TestDashboardContentFirstLoadFailure(t *testing.T) {
	body := renderContent(t, dashboard.Snapshot[api.TutorStatsResponse]{Error: true})

	assert.Contains(t, body, "No tutor profile found")
	assert.Contains(t, body, `href="/tutor/profile"`)
	assert.NotContains(t, body, "Total Sessions")
}

func TestDashboardContentStaleData(t *testing.T) {
	body := renderContent(t, dashboard.Snapshot[api.TutorStatsResponse]{Data: statsFixture(), Error: true})

	assert.Contains(t, body, "Retry")
	assert.Contains(t, body, "Ada Lovelace")
	assert.NotContains(t, body, "No tutor profile found")
}

func TestDashboardContentLoading(t *testing.T) {
	body := renderContent(t, dashboard.Snapshot[api.TutorStatsResponse]{Loading: true, Data: statsFixture()})

	assert.Contains(t, body, `hx-trigger="load delay:1s"`)
	assert.Contains(t, body, "skeleton")
	assert.NotContains(t, body, "Ada Lovelace")
}

func TestDashboardContentEmptyLists(t *testing.T) {
	data := statsFixture()
	data.RecentBookings = []api.Booking{}
	data.RecentReviews = []api.Review{}
	data.Stats.Upcoming = 0

	body := renderContent(t, dashboard.Snapshot[api.TutorStatsResponse]{Data: data})

	assert.Contains(t, body, "No sessions yet.")
	assert.Contains(t, body, "No reviews yet.")
	assert.Contains(t, body, "None")
}

func TestPageRendersLayout(t *testing.T) {
	r := newRenderer(t)
	w := httptest.NewRecorder()

	err := r.Page(w, http.StatusOK, "home", Page{
		Title:   "Dashboard",
		User:    &api.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: api.RoleTutor},
		Flashes: []notice.Toast{{Message: "Profile updated", Type: notice.TypeSuccess}},
	})
	require.NoError(t, err)

	body := w.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, body, "<title>Dashboard · SkillBridge</title>")
	assert.Contains(t, body, "Welcome, Ada")
	assert.Contains(t, body, `href="/tutor/dashboard"`)
	assert.Contains(t, body, "Logout")
	assert.Contains(t, body, `toast-success">Profile updated`)
}

func TestPageEscapesUserInput(t *testing.T) {
	r := newRenderer(t)
	w := httptest.NewRecorder()

	err := r.Page(w, http.StatusUnprocessableEntity, "login", Page{
		Data: LoginForm{Email: `"><script>x</script>`, Errors: FormErrors{"password": "Minimum length is 8 characters"}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, "<script>x</script>")
	assert.Contains(t, body, "Minimum length is 8 characters")
	assert.Contains(t, body, `href="/register"`)
}

func TestAllPagesRender(t *testing.T) {
	r := newRenderer(t)
	tutor := &statsFixture().TutorProfile

	pages := map[string]any{
		"login":           LoginForm{},
		"register":        RegisterForm{},
		"tutors":          TutorsList{Result: &api.TutorsResponse{Tutors: []api.TutorProfile{*tutor}, Pagination: api.Pagination{TotalTutors: 1, Page: 1, TotalPages: 1}}},
		"tutor_detail":    TutorDetail{Tutor: tutor},
		"tutor_dashboard": DashboardContent{Snapshot: dashboard.Snapshot[api.TutorStatsResponse]{Data: statsFixture()}},
		"profile":         ProfileForm{Profile: tutor, Categories: []api.Category{{ID: "c1", Name: "Math"}}},
		"availability":    AvailabilityPage{Slots: []api.AvailabilitySlot{{ID: "s1", Date: "2026-03-05", StartTime: "09:00", EndTime: "10:00"}}},
		"home":            nil,
		"not_found":       nil,
		"forbidden":       nil,
		"error":           nil,
	}

	for name, data := range pages {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, r.Page(w, http.StatusOK, name, Page{Data: data}))
			assert.True(t, strings.HasPrefix(w.Body.String(), "<!DOCTYPE html>"))
		})
	}
}

func TestUnknownPage(t *testing.T) {
	err := newRenderer(t).Page(httptest.NewRecorder(), http.StatusOK, "missing", Page{})
	assert.Error(t, err)
}
