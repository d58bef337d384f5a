// Package notice delivers transient user messages. HTMX requests get them as
// an HX-Trigger toast; plain form posts get a cookie flash shown on the next
// page.
package notice

import (
	"encoding/gob"
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	TypeSuccess = "success"
	TypeError   = "error"

	flashSession = "skillbridge-flash"
)

type Toast struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func init() {
	gob.Register(Toast{})
}

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// Notice collects the messages and client events produced while handling
// one request. Nothing is written until Flush.
type Notice struct {
	w      http.ResponseWriter
	r      *http.Request
	store  sessions.Store
	toasts []Toast
	events []string
}

func New(w http.ResponseWriter, r *http.Request, store sessions.Store) *Notice {
	return &Notice{w: w, r: r, store: store}
}

func (n *Notice) Success(message string) {
	n.toasts = append(n.toasts, Toast{Message: message, Type: TypeSuccess})
}

func (n *Notice) Failure(message string) {
	n.toasts = append(n.toasts, Toast{Message: message, Type: TypeError})
}

// Trigger queues a client-side event, such as a fragment reload. Events only
// reach htmx requests.
func (n *Notice) Trigger(event string) {
	n.events = append(n.events, event)
}

func (n *Notice) Toasts() []Toast {
	return n.toasts
}

// Flush writes the queued messages. It must run before the response body.
func (n *Notice) Flush() error {
	if len(n.toasts) == 0 && len(n.events) == 0 {
		return nil
	}
	if IsHTMX(n.r) {
		return n.writeTrigger()
	}
	return n.saveFlashes()
}

func (n *Notice) writeTrigger() error {
	payload := make(map[string]any, len(n.events)+1)
	for _, e := range n.events {
		payload[e] = true
	}
	// htmx keys events by name, so only the latest toast is shown.
	if len(n.toasts) > 0 {
		payload["toast"] = n.toasts[len(n.toasts)-1]
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	n.w.Header().Set("HX-Trigger", string(b))
	return nil
}

func (n *Notice) saveFlashes() error {
	if n.store == nil || len(n.toasts) == 0 {
		return nil
	}
	sess, err := n.store.Get(n.r, flashSession)
	if err != nil && sess == nil {
		return err
	}
	for _, t := range n.toasts {
		sess.AddFlash(t)
	}
	return sess.Save(n.r, n.w)
}

// Flashes pops the messages saved for the browser by earlier requests.
func Flashes(w http.ResponseWriter, r *http.Request, store sessions.Store) []Toast {
	if store == nil {
		return nil
	}
	sess, err := store.Get(r, flashSession)
	if err != nil && sess == nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}

	toasts := make([]Toast, 0, len(raw))
	for _, f := range raw {
		if t, ok := f.(Toast); ok {
			toasts = append(toasts, t)
		}
	}
	_ = sess.Save(r, w)
	return toasts
}
