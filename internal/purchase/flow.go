package purchase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"oc-ticketing/internal/apiclient"
	"oc-ticketing/internal/logger"
	"oc-ticketing/internal/models"
)

type State int

const (
	NoMatchSelected State = iota
	MatchSelected
	SectionsLoaded
	SectionSelected
	PurchaseSubmitted
	Confirmed
)

func (s State) String() string {
	switch s {
	case MatchSelected:
		return "match_selected"
	case SectionsLoaded:
		return "sections_loaded"
	case SectionSelected:
		return "section_selected"
	case PurchaseSubmitted:
		return "purchase_submitted"
	case Confirmed:
		return "confirmed"
	default:
		return "no_match_selected"
	}
}

const (
	sectionsFailedNotice = "No se pudieron cargar las secciones"
	purchaseFailedNotice = "Error procesando la compra"
)

var (
	ErrNoMatchSelected     = errors.New("no match selected")
	ErrSelectionIncomplete = errors.New("match and section must be selected")
	ErrPurchaseInFlight    = errors.New("purchase already submitted")
)

type SectionFetcher interface {
	Sections(ctx context.Context, matchID int64) ([]models.Section, error)
}

type Buyer interface {
	Buy(ctx context.Context, req models.PurchaseRequest, idempotencyKey string) (*models.Purchase, error)
}

// Snapshot is the read-only view of a flow.
type Snapshot struct {
	State     State            `json:"-"`
	StateName string           `json:"state"`
	Match     *models.Match    `json:"match,omitempty"`
	SectionID *int64           `json:"sectionId,omitempty"`
	Sections  []models.Section `json:"sections"`
	CanBuy    bool             `json:"canBuy"`
	Notice    string           `json:"notice,omitempty"`
}

// Flow sequences one user's purchase: pick a match, load its sections, pick a
// section, buy. Safe for concurrent use.
type Flow struct {
	mu       sync.Mutex
	sections SectionFetcher
	buyer    Buyer
	logger   *logger.Logger
	newKey   func() string

	state      State
	match      *models.Match
	sectionID  *int64
	list       []models.Section
	generation uint64
	idemKey    string
	notice     string
}

func NewFlow(sections SectionFetcher, buyer Buyer, l *logger.Logger) *Flow {
	if l == nil {
		l = logger.Nop()
	}
	return &Flow{
		sections: sections,
		buyer:    buyer,
		logger:   l,
		newKey:   uuid.NewString,
		list:     []models.Section{},
	}
}

// SelectMatch clears any chosen section and loads the match's sections. A
// load that finishes after the selection moved on is discarded.
func (f *Flow) SelectMatch(ctx context.Context, match models.Match) error {
	f.mu.Lock()
	if f.state == PurchaseSubmitted {
		f.mu.Unlock()
		return ErrPurchaseInFlight
	}
	f.generation++
	gen := f.generation
	m := match
	f.match = &m
	f.sectionID = nil
	f.list = []models.Section{}
	f.idemKey = ""
	f.notice = ""
	f.state = MatchSelected
	f.mu.Unlock()

	sections, err := f.sections.Sections(ctx, match.ID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		f.logger.Debug("PURCHASE", fmt.Sprintf("Discarding stale sections for match %d", match.ID))
		return nil
	}
	if err != nil {
		f.logger.Error("PURCHASE", fmt.Sprintf("Failed to load sections for match %d: %v", match.ID, err))
		f.notice = apiclient.UserMessage(err, sectionsFailedNotice)
		return err
	}
	if sections == nil {
		sections = []models.Section{}
	}
	f.list = sections
	if f.sectionID == nil {
		f.state = SectionsLoaded
	}
	return nil
}

// SelectSection works before the section list has arrived; the id is trusted.
func (f *Flow) SelectSection(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.match == nil {
		return ErrNoMatchSelected
	}
	if f.state == PurchaseSubmitted {
		return ErrPurchaseInFlight
	}
	if f.sectionID == nil || *f.sectionID != id {
		f.idemKey = ""
	}
	f.sectionID = &id
	f.state = SectionSelected
	return nil
}

func (f *Flow) CanBuy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canBuy()
}

func (f *Flow) canBuy() bool {
	return f.match != nil && f.sectionID != nil && f.state != PurchaseSubmitted
}

// Buy submits the selection. On success the flow resets and the purchase data
// for the confirmation page is returned. On failure the selection is kept and
// the error carries a user-facing message via Notice.
func (f *Flow) Buy(ctx context.Context, quantity int) (models.PurchaseData, error) {
	if quantity <= 0 {
		quantity = 1
	}

	f.mu.Lock()
	if !f.canBuy() {
		f.mu.Unlock()
		return models.PurchaseData{}, ErrSelectionIncomplete
	}
	if f.idemKey == "" {
		f.idemKey = f.newKey()
	}
	match := *f.match
	sectionID := *f.sectionID
	section := f.sectionByID(sectionID)
	key := f.idemKey
	prev := f.state
	f.state = PurchaseSubmitted
	f.notice = ""
	f.mu.Unlock()

	p, err := f.buyer.Buy(ctx, models.PurchaseRequest{
		MatchID:   match.ID,
		SectionID: sectionID,
		Quantity:  quantity,
	}, key)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = prev
		f.notice = apiclient.UserMessage(err, purchaseFailedNotice)
		f.logger.Error("PURCHASE", fmt.Sprintf("Purchase failed for match %d section %d: %v", match.ID, sectionID, err))
		return models.PurchaseData{}, err
	}

	f.state = Confirmed
	f.match = nil
	f.sectionID = nil
	f.list = []models.Section{}
	f.idemKey = ""
	f.generation++

	return models.PurchaseData{Match: match, Section: section, Purchase: p}, nil
}

// sectionByID falls back to a stand-in carrying only the id when the list is
// empty or stale.
func (f *Flow) sectionByID(id int64) models.Section {
	for _, s := range f.list {
		if s.ID == id {
			return s
		}
	}
	return models.Section{ID: id}
}

func (f *Flow) Notice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

// Reset returns the flow to its initial state, e.g. when the user panel is
// mounted again.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == PurchaseSubmitted {
		return
	}
	f.generation++
	f.state = NoMatchSelected
	f.match = nil
	f.sectionID = nil
	f.list = []models.Section{}
	f.idemKey = ""
	f.notice = ""
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := Snapshot{
		State:     f.state,
		StateName: f.state.String(),
		Sections:  append([]models.Section(nil), f.list...),
		CanBuy:    f.canBuy(),
		Notice:    f.notice,
	}
	if snap.Sections == nil {
		snap.Sections = []models.Section{}
	}
	if f.match != nil {
		m := *f.match
		snap.Match = &m
	}
	if f.sectionID != nil {
		id := *f.sectionID
		snap.SectionID = &id
	}
	return snap
}
