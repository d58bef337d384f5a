package handler

import (
	"net/http"
	"skillbridge/internal/logging"
	"skillbridge/internal/notice"
	"skillbridge/internal/session"
	"skillbridge/internal/view"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Pages renders views with the request's user and pending flashes.
type Pages struct {
	view    *view.Renderer
	flashes sessions.Store
}

func NewPages(v *view.Renderer, flashes sessions.Store) *Pages {
	return &Pages{view: v, flashes: flashes}
}

func (p *Pages) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	page := view.Page{
		Title:   title,
		Flashes: notice.Flashes(w, r, p.flashes),
		Data:    data,
	}
	if user, ok := session.UserFromContext(r.Context()); ok {
		page.User = user
	}

	if err := p.view.Page(w, status, name, page); err != nil {
		p.renderFailed(w, r, name, err)
	}
}

func (p *Pages) Fragment(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := p.view.Fragment(w, status, name, data); err != nil {
		p.renderFailed(w, r, name, err)
	}
}

func (p *Pages) renderFailed(w http.ResponseWriter, r *http.Request, name string, err error) {
	ctx := r.Context()
	if logger, ok := logging.GetFromContext(ctx); ok {
		logger.Error(ctx, "render failed", zap.String("template", name), zap.Error(err))
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.Render(w, r, http.StatusNotFound, "not_found", "Not found", nil)
}

func (p *Pages) Forbidden(w http.ResponseWriter, r *http.Request) {
	p.Render(w, r, http.StatusForbidden, "forbidden", "Forbidden", nil)
}

// Failed renders the generic error page with the status mapErr picks for err.
func (p *Pages) Failed(w http.ResponseWriter, r *http.Request, err error) {
	p.Render(w, r, mapErr(err), "error", "Error", nil)
}

// notifier binds a notice to the request and the flash store.
func (p *Pages) notifier(w http.ResponseWriter, r *http.Request) *notice.Notice {
	return notice.New(w, r, p.flashes)
}

// finish flushes n and ends a form post: htmx callers get 204 with the
// trigger header, browsers are redirected to target.
func (p *Pages) finish(w http.ResponseWriter, r *http.Request, n *notice.Notice, target string) {
	ctx := r.Context()
	if err := n.Flush(); err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "notice not saved", zap.Error(err))
		}
	}
	if notice.IsHTMX(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
