package pages

import (
	"sync"

	"github.com/programme-lv/arena/session"
)

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(path string)
}

// History is a Navigator that records where it was sent.
type History struct {
	mu    sync.Mutex
	paths []string
}

func (h *History) Navigate(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paths = append(h.paths, path)
}

// Last returns the latest navigation target, or "".
func (h *History) Last() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.paths) == 0 {
		return ""
	}
	return h.paths[len(h.paths)-1]
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.paths)
}

// Guard reports whether the user may stay on path. Signed-out users are
// sent to the login page and come back to path after logging in; users
// without the admin role are sent home from admin routes.
func Guard(sess *session.Session, nav Navigator, access Access, path string) bool {
	if access == Public {
		return true
	}
	if !sess.IsAuthenticated() {
		sess.RememberRedirect(path)
		nav.Navigate(PathLogin)
		return false
	}
	if access == AdminOnly && !sess.IsAdmin() {
		nav.Navigate(PathHome)
		return false
	}
	return true
}
