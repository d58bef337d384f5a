package handler

import (
	"context"
	"net/http"
	"skillbridge/internal/api"
	"skillbridge/internal/logging"
	"skillbridge/internal/session"
	"skillbridge/internal/view"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type AuthAPI interface {
	Login(ctx context.Context, req api.LoginRequest) ([]*http.Cookie, error)
	Register(ctx context.Context, req api.RegisterRequest) ([]*http.Cookie, error)
	Logout(ctx context.Context) ([]*http.Cookie, error)
}

// SessionDropper forgets per-user state kept between requests.
type SessionDropper interface {
	Drop(userID string)
}

type AuthHandler struct {
	api      AuthAPI
	resolver *session.Resolver
	pages    *Pages
	validate *validator.Validate
	dropper  SessionDropper
}

func NewAuthHandler(a AuthAPI, resolver *session.Resolver, pages *Pages, validate *validator.Validate, dropper SessionDropper) *AuthHandler {
	return &AuthHandler{api: a, resolver: resolver, pages: pages, validate: validate, dropper: dropper}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/register", h.RegisterPage)
	r.Post("/register", h.Register)
	r.Post("/logout", h.Logout)
}

type loginInput struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
}

var loginMessages = fieldMessages{
	"email":    "Invalid email address",
	"password": "Minimum length is 8 characters",
}

type registerInput struct {
	Name     string `form:"name" validate:"required,max=100"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
	Role     string `form:"role" validate:"required,oneof=STUDENT TUTOR"`
}

var registerMessages = fieldMessages{
	"name":     "Name is required",
	"email":    "Invalid email address",
	"password": "Minimum length is 8 characters",
	"role":     "Choose student or tutor",
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "login", "Login", view.LoginForm{})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.pages.Render(w, r, http.StatusBadRequest, "login", "Login", view.LoginForm{Message: "Invalid form"})
		return
	}

	in := loginInput{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	form := view.LoginForm{Email: in.Email}
	if form.Errors = validateForm(h.validate, in, loginMessages); form.Errors != nil {
		h.pages.Render(w, r, http.StatusUnprocessableEntity, "login", "Login", form)
		return
	}

	cookies, err := h.api.Login(ctx, api.LoginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Info(ctx, "login rejected", zap.Error(err))
		}
		form.Message = authFailureMessage(err, "Invalid email or password")
		h.pages.Render(w, r, authFailureStatus(err), "login", "Login", form)
		return
	}

	user := h.resolver.Resolve(ctx, api.CookieHeader(cookies))
	if user == nil {
		form.Message = "User data not found"
		h.pages.Render(w, r, http.StatusBadGateway, "login", "Login", form)
		return
	}

	relayCookies(w, cookies)
	http.Redirect(w, r, homeFor(user.Role), http.StatusSeeOther)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "register", "Register", view.RegisterForm{Role: string(api.RoleStudent)})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.pages.Render(w, r, http.StatusBadRequest, "register", "Register", view.RegisterForm{Message: "Invalid form"})
		return
	}

	in := registerInput{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Role:     strings.ToUpper(strings.TrimSpace(r.PostFormValue("role"))),
	}
	form := view.RegisterForm{Name: in.Name, Email: in.Email, Role: in.Role}
	if form.Errors = validateForm(h.validate, in, registerMessages); form.Errors != nil {
		h.pages.Render(w, r, http.StatusUnprocessableEntity, "register", "Register", form)
		return
	}

	cookies, err := h.api.Register(ctx, api.RegisterRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
	})
	if err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Info(ctx, "registration rejected", zap.Error(err))
		}
		form.Message = authFailureMessage(err, "Registration failed")
		h.pages.Render(w, r, authFailureStatus(err), "register", "Register", form)
		return
	}

	relayCookies(w, cookies)

	// The API may or may not open a session on registration.
	user := h.resolver.Resolve(ctx, api.CookieHeader(cookies))
	if user == nil {
		n := h.pages.notifier(w, r)
		n.Success("Account created. Please log in.")
		h.pages.finish(w, r, n, "/login")
		return
	}
	http.Redirect(w, r, homeFor(user.Role), http.StatusSeeOther)
}

// Logout ends the API session and forgets everything kept for the user.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if user := h.resolver.Resolve(ctx, r.Header.Get("Cookie")); user != nil {
		h.dropper.Drop(user.ID)
	}

	cookies, err := h.api.Logout(ctx)
	if err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "logout failed upstream", zap.Error(err))
		}
	}
	relayCookies(w, cookies)
	expireCookies(w, r)

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func homeFor(role api.Role) string {
	switch role {
	case api.RoleAdmin:
		return "/admin/dashboard"
	case api.RoleTutor:
		return "/tutor/dashboard"
	default:
		return "/dashboard"
	}
}

// relayCookies hands the API's session cookies to the browser. Domain is
// dropped so they bind to this host.
func relayCookies(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, c := range cookies {
		relayed := *c
		relayed.Domain = ""
		if relayed.Path == "" {
			relayed.Path = "/"
		}
		http.SetCookie(w, &relayed)
	}
}

// expireCookies clears the API session cookies the browser still holds, in
// case the API did not.
func expireCookies(w http.ResponseWriter, r *http.Request) {
	for _, c := range r.Cookies() {
		if !isAuthCookie(c.Name) || hasSetCookie(w, c.Name) {
			continue
		}
		http.SetCookie(w, &http.Cookie{Name: c.Name, Value: "", Path: "/", MaxAge: -1})
	}
}

func isAuthCookie(name string) bool {
	return strings.Contains(name, "session") || strings.Contains(name, "auth")
}

func hasSetCookie(w http.ResponseWriter, name string) bool {
	for _, v := range w.Header().Values("Set-Cookie") {
		if strings.HasPrefix(v, name+"=") {
			return true
		}
	}
	return false
}

func authFailureMessage(err error, fallback string) string {
	if apiErr, ok := api.AsError(err); ok && apiErr.StatusCode < 500 {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	return "Something went wrong!"
}

func authFailureStatus(err error) int {
	if apiErr, ok := api.AsError(err); ok && apiErr.StatusCode < 500 {
		return http.StatusUnprocessableEntity
	}
	return mapErr(err)
}
