package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"oc-ticketing/internal/navigation"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrMissingFields      = errors.New("name, email and password are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// LoginForm is the login tab. Role picks the landing page; Token, when the
// caller has one, becomes the session's bearer credential.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Token    string `json:"token,omitempty"`
}

type RegisterForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirmPassword"`
}

func (a *App) Login(ctx context.Context, f LoginForm) error {
	if strings.TrimSpace(f.Email) == "" || f.Password == "" {
		return ErrMissingCredentials
	}
	if f.Token != "" {
		if err := a.creds.SetToken(ctx, f.Token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}

	role := navigation.RoleUser
	page := navigation.PageUser
	if navigation.Role(f.Role) == navigation.RoleAdmin {
		role = navigation.RoleAdmin
		page = navigation.PageAdmin
	}
	a.logger.Info("AUTH", fmt.Sprintf("Session %s signed in as %s", a.ID, role))
	return a.goTo(ctx, page, role)
}

func (a *App) Register(ctx context.Context, f RegisterForm) error {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Email) == "" || f.Password == "" {
		return ErrMissingFields
	}
	if f.Password != f.Confirm {
		return ErrPasswordMismatch
	}
	a.logger.Info("AUTH", fmt.Sprintf("Session %s registered", a.ID))
	return a.goTo(ctx, navigation.PageUser, navigation.RoleUser)
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.creds.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return a.goTo(ctx, navigation.PageHome, nil)
}
