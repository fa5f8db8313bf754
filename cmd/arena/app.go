package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/conf"
	"github.com/programme-lv/arena/logger"
	"github.com/programme-lv/arena/pages"
	"github.com/programme-lv/arena/session"
)

// app is the state shared by every command of one invocation.
type app struct {
	cfg  *conf.Config
	log  *slog.Logger
	sess *session.Session
	nav  *pages.History
	out  io.Writer
}

func (a *app) setup(ctx context.Context) (context.Context, error) {
	cfg, err := conf.Load()
	if err != nil {
		return ctx, fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg
	a.log = logger.NewConsole(os.Stderr, logger.ParseLevel(cfg.LogLevel))
	a.nav = &pages.History{}
	a.out = os.Stdout

	for _, dir := range []string{cfg.Dirs.State, cfg.Dirs.Runtime} {
		if err := conf.EnsureDir(dir); err != nil {
			return ctx, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	client := apiclient.NewClient(cfg.APIURL,
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithLogger(a.log.With("module", "apiclient")),
	)
	sessLog := a.log.With("module", "session")
	persistent := session.NewFileStorage(filepath.Join(cfg.Dirs.State, "session.toml"))
	transient := session.NewFileStorage(filepath.Join(cfg.Dirs.Runtime, "transient.toml"))
	persistent.SetLogger(sessLog)
	transient.SetLogger(sessLog)
	a.sess = session.New(client, persistent, transient)
	a.sess.SetLogger(sessLog)
	a.sess.Init(ctx)

	a.log.Debug("session ready", "api", client.BaseURL(), "authenticated", a.sess.IsAuthenticated())
	return logger.WithLogger(ctx, a.log), nil
}

func (a *app) close() {
	if a.sess != nil {
		a.sess.Close()
	}
}

func (a *app) deps(ctx context.Context) pages.Deps {
	return pages.Deps{
		Session:      a.sess,
		Nav:          a.nav,
		Logger:       logger.FromContext(ctx),
		ParallelRuns: a.cfg.ParallelRuns,
	}
}

type loader interface {
	Load(ctx context.Context) error
}

// load runs a page load and turns a guard redirect into an error naming
// where the user was sent.
func (a *app) load(ctx context.Context, p loader) error {
	return redirectHint(p.Load(ctx))
}

// guard checks access to path for actions that are not page loads.
func (a *app) guard(path string) error {
	if pages.Guard(a.sess, a.nav, pages.AccessFor(path), path) {
		return nil
	}
	return redirectHint(&pages.RedirectError{To: a.nav.Last()})
}

func redirectHint(err error) error {
	to, ok := pages.IsRedirect(err)
	if !ok {
		return err
	}
	if to == pages.PathLogin {
		return fmt.Errorf("%w: run `arena login` first", err)
	}
	return fmt.Errorf("%w: this needs the admin role", err)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}
