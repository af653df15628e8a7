package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"oc-ticketing/internal/models"
)

type Page string

const (
	PageHome         Page = "home"
	PageAuth         Page = "auth"
	PageUser         Page = "user"
	PageAdmin        Page = "admin"
	PageConfirmation Page = "confirmation"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var (
	ErrUnknownPage = errors.New("unknown page")
	ErrBadPayload  = errors.New("unexpected payload for page")
)

func ParsePage(s string) (Page, error) {
	switch p := Page(s); p {
	case PageHome, PageAuth, PageUser, PageAdmin, PageConfirmation:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, s)
}

// MountFunc runs every time its page becomes current.
type MountFunc func(ctx context.Context, page Page)

// Navigator is the single current-page state of one UI session. Payloads are
// opaque to it except for the two it keeps: the role chosen at login and the
// purchase data shown by the confirmation page.
type Navigator struct {
	mu       sync.RWMutex
	current  Page
	role     Role
	purchase *models.PurchaseData
	mounts   map[Page][]MountFunc
}

func New() *Navigator {
	return &Navigator{
		current: PageHome,
		role:    RoleUser,
		mounts:  make(map[Page][]MountFunc),
	}
}

// OnMount registers fn to run whenever page is entered.
func (n *Navigator) OnMount(page Page, fn MountFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mounts[page] = append(n.mounts[page], fn)
}

// Navigate switches page. For user and admin the payload is the role (a Role
// or string, nil keeps the previous one); for confirmation it is the purchase
// data. Leaving the confirmation page drops the purchase data.
func (n *Navigator) Navigate(ctx context.Context, page Page, payload any) error {
	if _, err := ParsePage(string(page)); err != nil {
		return err
	}

	n.mu.Lock()
	switch page {
	case PageUser, PageAdmin:
		switch v := payload.(type) {
		case nil:
		case Role:
			n.role = v
		case string:
			n.role = Role(v)
		default:
			n.mu.Unlock()
			return fmt.Errorf("%w %s: %T", ErrBadPayload, page, payload)
		}
	case PageConfirmation:
		switch v := payload.(type) {
		case *models.PurchaseData:
			n.purchase = v
		case models.PurchaseData:
			n.purchase = &v
		default:
			n.mu.Unlock()
			return fmt.Errorf("%w %s: %T", ErrBadPayload, page, payload)
		}
	}
	if page != PageConfirmation {
		n.purchase = nil
	}
	n.current = page
	hooks := append([]MountFunc(nil), n.mounts[page]...)
	n.mu.Unlock()

	for _, fn := range hooks {
		fn(ctx, page)
	}
	return nil
}

func (n *Navigator) Current() Page {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

func (n *Navigator) Role() Role {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.role
}

// PurchaseData is nil unless the confirmation page is current.
func (n *Navigator) PurchaseData() *models.PurchaseData {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.purchase
}
