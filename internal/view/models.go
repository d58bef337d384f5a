package view

import (
	"skillbridge/internal/api"
	"skillbridge/internal/dashboard"
)

// FormErrors maps a form field name to its message.
type FormErrors map[string]string

type LoginForm struct {
	Email   string
	Errors  FormErrors
	Message string
}

type RegisterForm struct {
	Name    string
	Email   string
	Role    string
	Errors  FormErrors
	Message string
}

type TutorsList struct {
	Search     string
	CategoryID string
	MinPrice   string
	MaxPrice   string
	Categories []api.Category
	Result     *api.TutorsResponse
	PrevURL    string
	NextURL    string
	Failed     bool
}

type TutorDetail struct {
	Tutor *api.TutorProfile
	Slots []api.AvailabilitySlot
}

// DashboardContent is the tutor dashboard fragment, drawn from a loader
// snapshot.
type DashboardContent struct {
	dashboard.Snapshot[api.TutorStatsResponse]
}

// Stale reports a failed refresh with an earlier payload still on screen.
func (d DashboardContent) Stale() bool {
	return d.Error && d.Data != nil
}

// NoProfile is the first-load failure branch.
func (d DashboardContent) NoProfile() bool {
	return !d.Loading && d.Data == nil
}

type ProfileForm struct {
	Profile    *api.TutorProfile
	Categories []api.Category
	Errors     FormErrors
}

type AvailabilityPage struct {
	Slots  []api.AvailabilitySlot
	Failed bool
	Form   api.CreateAvailabilityPayload
	Errors FormErrors
}
