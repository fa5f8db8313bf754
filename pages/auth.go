package pages

import (
	"context"
)

// Auth backs the login and register forms.
type Auth struct {
	deps Deps
}

func NewAuth(d Deps) *Auth {
	return &Auth{deps: d}
}

// Login signs in and follows the stored redirect, if any.
func (a *Auth) Login(ctx context.Context, username, password string) error {
	redirect, err := a.deps.Session.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if redirect != "" {
		a.deps.Nav.Navigate(redirect)
	}
	return nil
}

func (a *Auth) Register(ctx context.Context, username, email, password string) error {
	redirect, err := a.deps.Session.Register(ctx, username, email, password)
	if err != nil {
		return err
	}
	if redirect != "" {
		a.deps.Nav.Navigate(redirect)
	}
	return nil
}

func (a *Auth) Logout() {
	a.deps.Session.Logout()
	a.deps.Nav.Navigate(PathHome)
}
