package receipt

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"oc-ticketing/internal/matches"
	"oc-ticketing/internal/models"
	"oc-ticketing/internal/money"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var monthsES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// View is the confirmation page's content for one purchase.
type View struct {
	Match       string `json:"match"`
	Competition string `json:"competition"`
	Kickoff     string `json:"kickoff"`
	Section     string `json:"section"`
	Price       string `json:"price"`
	TicketCode  string `json:"ticketCode"`
	PurchaseID  string `json:"purchaseId,omitempty"`
	PurchasedAt string `json:"purchasedAt"`
	CanDownload bool   `json:"canDownload"`
	MatchID     int64  `json:"matchId"`
	SectionID   int64  `json:"sectionId"`
}

// Build assembles the view. When the backend issued no ticket code a local
// one is made up from intn, which must return values in [0, n).
func Build(data models.PurchaseData, at time.Time, intn func(n int) int) View {
	if intn == nil {
		intn = rand.IntN
	}
	v := View{
		Match:       data.Match.Label(),
		Competition: data.Match.Competition,
		Kickoff:     matches.FormatDateTime(data.Match.Date, data.Match.Time),
		Section:     data.Section.Name,
		Price:       money.Pesos(data.Section.Price),
		PurchasedAt: LongDate(at),
		MatchID:     data.Match.ID,
		SectionID:   data.Section.ID,
	}
	if p := data.Purchase; p != nil {
		v.PurchaseID = p.PurchaseID
		v.CanDownload = p.DownloadURL != ""
		if len(p.Tickets) > 0 && p.Tickets[0].Code != "" {
			v.TicketCode = p.Tickets[0].Code
		}
	}
	if v.TicketCode == "" {
		v.TicketCode = fallbackCode(data.Match.ID, data.Section.ID, intn)
	}
	return v
}

func (v View) Payload() Payload {
	return Payload{Code: v.TicketCode, PurchaseID: v.PurchaseID, MatchID: v.MatchID, SectionID: v.SectionID}
}

func fallbackCode(matchID, sectionID int64, intn func(int) int) string {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteByte(codeAlphabet[intn(len(codeAlphabet))])
	}
	return fmt.Sprintf("OC-%d%d-%s", matchID, sectionID, b.String())
}

// LongDate renders t as "5 de noviembre de 2025, 08:00 p. m.".
func LongDate(t time.Time) string {
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	meridiem := "a. m."
	if t.Hour() >= 12 {
		meridiem = "p. m."
	}
	return fmt.Sprintf("%d de %s de %d, %02d:%02d %s",
		t.Day(), monthsES[t.Month()-1], t.Year(), hour, t.Minute(), meridiem)
}
