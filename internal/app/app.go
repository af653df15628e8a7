package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"oc-ticketing/internal/admin"
	"oc-ticketing/internal/events"
	"oc-ticketing/internal/logger"
	"oc-ticketing/internal/matches"
	"oc-ticketing/internal/models"
	"oc-ticketing/internal/navigation"
	"oc-ticketing/internal/purchase"
	"oc-ticketing/internal/receipt"
	"oc-ticketing/internal/session"
)

const upcomingShown = 3

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrNoPurchase    = errors.New("no purchase to show")
)

// MatchBackend is the slice of the backend one session talks to.
type MatchBackend interface {
	admin.MatchBackend
	purchase.SectionFetcher
}

type HomeMatch struct {
	models.Match
	Available           int64 `json:"available"`
	AvailabilityPercent int   `json:"availabilityPercent"`
}

type HomeView struct {
	Loading bool        `json:"loading"`
	Matches []HomeMatch `json:"matches"`
}

// State is everything the front-end needs to draw the current page.
type State struct {
	Page         navigation.Page   `json:"page"`
	Role         navigation.Role   `json:"role"`
	Home         HomeView          `json:"home"`
	Matches      []models.Match    `json:"matches"`
	Purchase     purchase.Snapshot `json:"purchase"`
	Confirmation *receipt.View     `json:"confirmation,omitempty"`
}

// App is one UI session: its page, its credential and the state of every
// page controller.
type App struct {
	ID string

	nav       *navigation.Navigator
	creds     session.Store
	backend   MatchBackend
	flow      *purchase.Flow
	panel     *admin.Panel
	qr        *receipt.QRGenerator
	receipts  *receipt.Downloader
	publisher events.Publisher
	logger    *logger.Logger
	now       func() time.Time

	startMu sync.Mutex
	started bool

	mu           sync.Mutex
	home         HomeView
	userMatches  []models.Match
	confirmation *receipt.View
}

type Deps struct {
	Credentials session.Store
	Backend     MatchBackend
	Buyer       purchase.Buyer
	Teams       admin.TeamSource
	Publisher   events.Publisher
	QR          *receipt.QRGenerator
	Receipts    *receipt.Downloader
	Logger      *logger.Logger
}

func New(id string, d Deps) *App {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Publisher == nil {
		d.Publisher = events.Noop{}
	}
	if d.Credentials == nil {
		d.Credentials = session.NewMemoryStore("")
	}
	a := &App{
		ID:          id,
		nav:         navigation.New(),
		creds:       d.Credentials,
		backend:     d.Backend,
		flow:        purchase.NewFlow(d.Backend, d.Buyer, d.Logger),
		panel:       admin.NewPanel(d.Backend, d.Teams, d.Publisher, d.Logger),
		qr:          d.QR,
		receipts:    d.Receipts,
		publisher:   d.Publisher,
		logger:      d.Logger,
		now:         time.Now,
		home:        HomeView{Loading: true, Matches: []HomeMatch{}},
		userMatches: []models.Match{},
	}

	a.nav.OnMount(navigation.PageHome, a.mountHome)
	a.nav.OnMount(navigation.PageUser, a.mountUser)
	a.nav.OnMount(navigation.PageAdmin, a.mountAdmin)
	a.nav.OnMount(navigation.PageConfirmation, a.mountConfirmation)
	return a
}

// Start mounts the landing page.
func (a *App) Start(ctx context.Context) error {
	a.startMu.Lock()
	defer a.startMu.Unlock()
	a.started = true
	return a.nav.Navigate(ctx, navigation.PageHome, nil)
}

// EnsureStarted mounts the landing page unless the session has already
// navigated somewhere.
func (a *App) EnsureStarted(ctx context.Context) error {
	a.startMu.Lock()
	defer a.startMu.Unlock()
	if a.started {
		return nil
	}
	a.started = true
	return a.nav.Navigate(ctx, navigation.PageHome, nil)
}

func (a *App) Navigate(ctx context.Context, page string, payload any) error {
	p, err := navigation.ParsePage(page)
	if err != nil {
		return err
	}
	return a.goTo(ctx, p, payload)
}

func (a *App) goTo(ctx context.Context, page navigation.Page, payload any) error {
	a.startMu.Lock()
	a.started = true
	a.startMu.Unlock()
	return a.nav.Navigate(ctx, page, payload)
}

func (a *App) Page() navigation.Page {
	return a.nav.Current()
}

func (a *App) Admin() *admin.Panel {
	return a.panel
}

func (a *App) Flow() *purchase.Flow {
	return a.flow
}

func (a *App) mountHome(ctx context.Context, _ navigation.Page) {
	a.mu.Lock()
	a.home.Loading = true
	a.mu.Unlock()

	list, err := a.backend.List(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.home.Loading = false
	if err != nil {
		a.logger.Error("HOME", fmt.Sprintf("Error loading matches: %v", err))
		return
	}
	upcoming := matches.Upcoming(list, upcomingShown)
	a.home.Matches = make([]HomeMatch, 0, len(upcoming))
	for _, m := range upcoming {
		a.home.Matches = append(a.home.Matches, HomeMatch{
			Match:               m,
			Available:           matches.Available(m),
			AvailabilityPercent: matches.AvailabilityPercent(m),
		})
	}
}

func (a *App) mountUser(ctx context.Context, _ navigation.Page) {
	a.flow.Reset()

	list, err := a.backend.List(ctx)
	if err != nil {
		a.logger.Error("USER", fmt.Sprintf("Error loading matches: %v", err))
		return
	}
	active := make([]models.Match, 0, len(list))
	for _, m := range list {
		if m.Status == models.MatchActive {
			active = append(active, m)
		}
	}
	a.mu.Lock()
	a.userMatches = active
	a.mu.Unlock()
}

func (a *App) mountAdmin(ctx context.Context, _ navigation.Page) {
	// failures are logged by the panel
	_ = a.panel.Load(ctx)
}

func (a *App) mountConfirmation(_ context.Context, _ navigation.Page) {
	data := a.nav.PurchaseData()
	a.mu.Lock()
	defer a.mu.Unlock()
	if data == nil {
		a.confirmation = nil
		return
	}
	v := receipt.Build(*data, a.now(), nil)
	a.confirmation = &v
}

// SelectMatch picks one of the user page's matches. A failed section load is
// not returned; it shows up as the flow's notice.
func (a *App) SelectMatch(ctx context.Context, id int64) error {
	a.mu.Lock()
	var match *models.Match
	for i := range a.userMatches {
		if a.userMatches[i].ID == id {
			m := a.userMatches[i]
			match = &m
			break
		}
	}
	a.mu.Unlock()
	if match == nil {
		return ErrMatchNotFound
	}

	err := a.flow.SelectMatch(ctx, *match)
	if errors.Is(err, purchase.ErrPurchaseInFlight) {
		return err
	}
	return nil
}

func (a *App) SelectSection(id int64) error {
	return a.flow.SelectSection(id)
}

// Buy submits the selection and moves to the confirmation page on success.
func (a *App) Buy(ctx context.Context, quantity int) (models.PurchaseData, error) {
	data, err := a.flow.Buy(ctx, quantity)
	if err != nil {
		return models.PurchaseData{}, err
	}
	if err := a.publisher.PurchaseConfirmed(ctx, data); err != nil {
		a.logger.Warn("PURCHASE", fmt.Sprintf("Purchase event not published: %v", err))
	}
	if err := a.goTo(ctx, navigation.PageConfirmation, data); err != nil {
		return data, err
	}
	return data, nil
}

func (a *App) Confirmation() (receipt.View, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.confirmation == nil || a.nav.Current() != navigation.PageConfirmation {
		return receipt.View{}, ErrNoPurchase
	}
	return *a.confirmation, nil
}

func (a *App) QRCode() ([]byte, error) {
	v, err := a.Confirmation()
	if err != nil {
		return nil, err
	}
	return a.qr.PNG(v.Payload())
}

// Receipt downloads the confirmation's document; the name is <purchaseId>.pdf.
func (a *App) Receipt(ctx context.Context) ([]byte, string, error) {
	data := a.nav.PurchaseData()
	if data == nil || a.nav.Current() != navigation.PageConfirmation {
		return nil, "", ErrNoPurchase
	}
	return a.receipts.Fetch(ctx, data.Purchase)
}

func (a *App) SaveReceipt(ctx context.Context) (string, error) {
	data := a.nav.PurchaseData()
	if data == nil || a.nav.Current() != navigation.PageConfirmation {
		return "", ErrNoPurchase
	}
	return a.receipts.Save(ctx, data.Purchase)
}

func (a *App) State() State {
	a.mu.Lock()
	st := State{
		Page:    a.nav.Current(),
		Role:    a.nav.Role(),
		Home:    HomeView{Loading: a.home.Loading, Matches: append([]HomeMatch{}, a.home.Matches...)},
		Matches: append([]models.Match{}, a.userMatches...),
	}
	if a.confirmation != nil && st.Page == navigation.PageConfirmation {
		v := *a.confirmation
		st.Confirmation = &v
	}
	a.mu.Unlock()

	st.Purchase = a.flow.Snapshot()
	return st
}
