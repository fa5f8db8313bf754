package pages

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/session"
	"github.com/programme-lv/arena/srvcerror"
)

// Deps are shared by every page.
type Deps struct {
	Session *session.Session
	Nav     Navigator
	Now     func() time.Time
	Logger  *slog.Logger
	// ParallelRuns bounds concurrent test executions on the solve page.
	ParallelRuns int
}

func (d Deps) client() *apiclient.Client {
	return d.Session.Client()
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

type State struct {
	Loading  bool
	Loaded   bool
	Err      error
	NotFound bool
	// Redirect is set when the guard sent the user elsewhere.
	Redirect string
}

// Page is a route's view model. Every Load starts a new generation; a
// load that finishes after a newer one started is dropped.
type Page[T any] struct {
	deps   Deps
	path   string
	access Access
	fetch  func(ctx context.Context) (T, error)

	mu    sync.RWMutex
	gen   uint64
	state State
	data  T
}

func newPage[T any](d Deps, path string, access Access, fetch func(ctx context.Context) (T, error)) *Page[T] {
	return &Page[T]{deps: d, path: path, access: access, fetch: fetch}
}

func (p *Page[T]) Path() string {
	return p.path
}

// Load runs the guard and fetches the page data.
func (p *Page[T]) Load(ctx context.Context) error {
	if !Guard(p.deps.Session, p.deps.Nav, p.access, p.path) {
		to := PathHome
		if !p.deps.Session.IsAuthenticated() {
			to = PathLogin
		}
		p.mu.Lock()
		p.state = State{Redirect: to}
		p.mu.Unlock()
		return &RedirectError{To: to}
	}

	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.state.Loading = true
	p.mu.Unlock()

	data, err := p.fetch(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		p.deps.logger().Debug("dropping superseded load", "path", p.path, "generation", gen)
		return err
	}
	p.state = State{Loaded: err == nil, Err: err}
	if err != nil {
		p.state.NotFound = srvcerror.HasCode(err, srvcerror.ErrCodeNotFound)
		p.deps.logger().Debug("page load failed", "path", p.path, "error", err)
		return err
	}
	p.data = data
	return nil
}

// View returns a snapshot of the data and the load state.
func (p *Page[T]) View() (T, State) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data, p.state
}

func (p *Page[T]) Data() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data
}

func (p *Page[T]) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// update changes the loaded data in place, e.g. after a filter change.
func (p *Page[T]) update(f func(*T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f(&p.data)
}
