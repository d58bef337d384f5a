package handler

import (
	"net/http"
	"skillbridge/internal/api"
	"skillbridge/internal/session"
)

// Home renders the signed-in user's landing page for roles without a
// dashboard of their own.
func (p *Pages) Home(w http.ResponseWriter, r *http.Request) {
	title := "Dashboard"
	if user, ok := session.UserFromContext(r.Context()); ok && user.Role == api.RoleAdmin {
		title = "Admin dashboard"
	}
	p.Render(w, r, http.StatusOK, "home", title, nil)
}

// Root sends visitors to the tutor directory.
func Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/tutors", http.StatusFound)
}
