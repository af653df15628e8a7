package admin

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"oc-ticketing/internal/apiclient"
	"oc-ticketing/internal/events"
	"oc-ticketing/internal/logger"
	"oc-ticketing/internal/models"
	"oc-ticketing/internal/teams"
)

const (
	createFailedNotice = "Error creando partido"
	updateFailedNotice = "Error actualizando partido"
	deleteFailedNotice = "Error eliminando partido"

	historyShown = 5
)

var (
	ErrMissingFields = errors.New("away team, date, time and competition are required")
	ErrInvalidStatus = errors.New("status must be active or inactive")
	ErrNotConfirmed  = errors.New("delete was not confirmed")
	ErrMatchNotFound = errors.New("match not found")
	ErrNoEdit        = errors.New("no edit in progress")
)

type MatchBackend interface {
	List(ctx context.Context) ([]models.Match, error)
	Create(ctx context.Context, in models.MatchInput) (models.Match, error)
	Update(ctx context.Context, id int64, upd models.MatchUpdate) (models.Match, error)
	Delete(ctx context.Context, id int64) error
}

type TeamSource interface {
	Fetch(ctx context.Context) ([]models.Team, error)
}

// Draft is the working copy of a match being edited. Team is the directory
// entry matching Away, once the directory has arrived.
type Draft struct {
	MatchID int64              `json:"matchId"`
	Fields  models.MatchUpdate `json:"fields"`
	Team    *models.Team       `json:"team,omitempty"`
}

// Panel holds the admin page's state: the fixture list, the team directory,
// a pending edit and the simulation history.
type Panel struct {
	mu        sync.Mutex
	backend   MatchBackend
	teams     TeamSource
	publisher events.Publisher
	logger    *logger.Logger
	rng       *rand.Rand
	now       func() time.Time

	matches     []models.Match
	teamList    []models.Team
	draft       *Draft
	simulations []models.SimulationResult
	notice      string
}

func NewPanel(backend MatchBackend, teamSource TeamSource, pub events.Publisher, l *logger.Logger) *Panel {
	if l == nil {
		l = logger.Nop()
	}
	if pub == nil {
		pub = events.Noop{}
	}
	return &Panel{
		backend:   backend,
		teams:     teamSource,
		publisher: pub,
		logger:    l,
		rng:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x0ca1da5)),
		now:       time.Now,
		matches:   []models.Match{},
		teamList:  []models.Team{},
	}
}

// Load fetches the fixture list and the team directory side by side. Each
// result is applied as soon as it arrives; a directory failure is only logged.
func (p *Panel) Load(ctx context.Context) error {
	var wg sync.WaitGroup
	var listErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		list, err := p.backend.List(ctx)
		if err != nil {
			p.logger.Error("ADMIN", fmt.Sprintf("Error loading matches: %v", err))
			listErr = err
			return
		}
		p.mu.Lock()
		p.matches = list
		p.mu.Unlock()
	}()

	if p.teams != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list, err := p.teams.Fetch(ctx)
			if err != nil {
				p.logger.Warn("ADMIN", fmt.Sprintf("Team directory unavailable: %v", err))
				return
			}
			p.SetTeams(list)
		}()
	}

	wg.Wait()
	return listErr
}

// SetTeams replaces the directory and reconciles any pending edit with it.
func (p *Panel) SetTeams(list []models.Team) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if list == nil {
		list = []models.Team{}
	}
	p.teamList = list
	p.reconcile()
}

func (p *Panel) reconcile() {
	if p.draft == nil {
		return
	}
	if t, ok := teams.Find(p.teamList, p.draft.Fields.Away); ok {
		p.draft.Team = &t
		return
	}
	p.draft.Team = nil
}

func validFields(away, date, clock, competition string) bool {
	for _, v := range []string{away, date, clock, competition} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

func (p *Panel) Create(ctx context.Context, in models.MatchInput) (models.Match, error) {
	if !validFields(in.Away, in.Date, in.Time, in.Competition) {
		return models.Match{}, ErrMissingFields
	}

	created, err := p.backend.Create(ctx, in)
	if err != nil {
		p.fail(err, createFailedNotice)
		return models.Match{}, err
	}

	p.mu.Lock()
	p.matches = append(p.matches, created)
	p.notice = ""
	p.mu.Unlock()

	p.logger.LogAdmin("CREATE", strconv.FormatInt(created.ID, 10), created.Label())
	p.publish(ctx, events.MatchCreated, created)
	return created, nil
}

func (p *Panel) BeginEdit(id int64) (Draft, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexOf(id)
	if i < 0 {
		return Draft{}, ErrMatchNotFound
	}
	m := p.matches[i]
	p.draft = &Draft{
		MatchID: m.ID,
		Fields: models.MatchUpdate{
			Away:        m.Away,
			Date:        m.Date,
			Time:        m.Time,
			Competition: m.Competition,
			Status:      m.Status,
		},
	}
	p.reconcile()
	return *p.draft, nil
}

// SaveEdit submits the pending edit with the given fields. An empty status
// keeps the draft's.
func (p *Panel) SaveEdit(ctx context.Context, fields models.MatchUpdate) (models.Match, error) {
	p.mu.Lock()
	if p.draft == nil {
		p.mu.Unlock()
		return models.Match{}, ErrNoEdit
	}
	id := p.draft.MatchID
	if fields.Status == "" {
		fields.Status = p.draft.Fields.Status
	}
	p.draft.Fields = fields
	p.reconcile()
	p.mu.Unlock()

	if !validFields(fields.Away, fields.Date, fields.Time, fields.Competition) {
		return models.Match{}, ErrMissingFields
	}
	if !fields.Status.Valid() {
		return models.Match{}, ErrInvalidStatus
	}

	updated, err := p.backend.Update(ctx, id, fields)
	if err != nil {
		p.fail(err, updateFailedNotice)
		return models.Match{}, err
	}

	p.mu.Lock()
	if i := p.indexOf(updated.ID); i >= 0 {
		p.matches[i] = updated
	}
	if p.draft != nil && p.draft.MatchID == id {
		p.draft = nil
	}
	p.notice = ""
	p.mu.Unlock()

	p.logger.LogAdmin("UPDATE", strconv.FormatInt(updated.ID, 10), updated.Label())
	p.publish(ctx, events.MatchUpdated, updated)
	return updated, nil
}

func (p *Panel) CancelEdit() {
	p.mu.Lock()
	p.draft = nil
	p.mu.Unlock()
}

func (p *Panel) Draft() (Draft, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.draft == nil {
		return Draft{}, false
	}
	return *p.draft, true
}

// Delete removes a match once the admin has confirmed. On failure the list
// is left as it was.
func (p *Panel) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}

	if err := p.backend.Delete(ctx, id); err != nil {
		p.fail(err, deleteFailedNotice)
		return err
	}

	var removed models.Match
	p.mu.Lock()
	if i := p.indexOf(id); i >= 0 {
		removed = p.matches[i]
		p.matches = append(p.matches[:i:i], p.matches[i+1:]...)
	} else {
		removed = models.Match{ID: id}
	}
	if p.draft != nil && p.draft.MatchID == id {
		p.draft = nil
	}
	p.notice = ""
	p.mu.Unlock()

	p.logger.LogAdmin("DELETE", strconv.FormatInt(id, 10), "removed")
	p.publish(ctx, events.MatchDeleted, removed)
	return nil
}

// Simulate draws a made-up result for a match. Nothing is sent anywhere.
func (p *Panel) Simulate(id int64) (models.SimulationResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexOf(id)
	if i < 0 {
		return models.SimulationResult{}, ErrMatchNotFound
	}
	m := p.matches[i]
	res := models.SimulationResult{
		MatchID:     m.ID,
		Label:       m.Label(),
		HomeGoals:   p.rng.IntN(5),
		AwayGoals:   p.rng.IntN(4),
		Attendance:  p.rng.IntN(8000) + 12000,
		SimulatedAt: p.now(),
	}
	p.simulations = append(p.simulations, res)
	if len(p.simulations) > historyShown {
		p.simulations = append([]models.SimulationResult(nil), p.simulations[len(p.simulations)-historyShown:]...)
	}
	return res, nil
}

// RecentSimulations returns up to five results, newest first.
func (p *Panel) RecentSimulations() []models.SimulationResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.SimulationResult, 0, len(p.simulations))
	for i := len(p.simulations) - 1; i >= 0 && len(out) < historyShown; i-- {
		out = append(out, p.simulations[i])
	}
	return out
}

func (p *Panel) Matches() []models.Match {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Match{}, p.matches...)
}

func (p *Panel) Teams() []models.Team {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Team{}, p.teamList...)
}

func (p *Panel) Notice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notice
}

func (p *Panel) indexOf(id int64) int {
	for i, m := range p.matches {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (p *Panel) fail(err error, fallback string) {
	msg := apiclient.UserMessage(err, fallback)
	p.logger.Error("ADMIN", fmt.Sprintf("%s: %v", fallback, err))
	p.mu.Lock()
	p.notice = msg
	p.mu.Unlock()
}

func (p *Panel) publish(ctx context.Context, action events.Action, m models.Match) {
	if err := p.publisher.MatchChanged(ctx, action, m); err != nil {
		p.logger.Warn("ADMIN", fmt.Sprintf("Match %s event not published: %v", action, err))
	}
}
