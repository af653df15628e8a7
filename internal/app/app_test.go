package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oc-ticketing/internal/navigation"
	"oc-ticketing/internal/purchase"
	"oc-ticketing/internal/receipt"
	"oc-ticketing/internal/session"
)

const fixtures = `[
 {"id":3,"home":"Once Caldas","away":"América de Cali","date":"2025-11-19","time":"16:00","competition":"Copa Colombia","capacity":20000,"tickets_sold":5000,"revenue":225000000,"status":"active"},
 {"id":1,"home":"Once Caldas","away":"Atlético Nacional","date":"2025-11-05","time":"20:00","competition":"Liga BetPlay","capacity":20000,"ticketsSold":15000},
 {"id":2,"away":"Millonarios FC","date":"2025-11-12","time":"18:30","competition":"Liga BetPlay","capacity":20000,"tickets_sold":18000,"status":"inactive"},
 {"id":4,"home":"Once Caldas","away":"Junior","date":"2025-12-01","time":"19:00","competition":"Liga BetPlay","capacity":20000}
]`

type fakeBackend struct {
	*httptest.Server
	purchases atomic.Int32
	lastKey   atomic.Value
	lastAuth  atomic.Value
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	r := chi.NewRouter()
	writeJSON := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
	r.Get("/api/matches", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, fixtures)
	})
	r.Get("/api/matches/{id}/sections", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "4" {
			writeJSON(w, http.StatusInternalServerError, `{"error":"Secciones no disponibles"}`)
			return
		}
		writeJSON(w, http.StatusOK, `[{"id":1,"name":"Occidental","capacity":6000,"available":4200,"price":45000},{"id":3,"name":"Norte","capacity":4000,"available":2100,"price":35000}]`)
	})
	r.Post("/api/purchases", func(w http.ResponseWriter, r *http.Request) {
		fb.purchases.Add(1)
		fb.lastKey.Store(r.Header.Get("Idempotency-Key"))
		fb.lastAuth.Store(r.Header.Get("Authorization"))
		var req struct {
			MatchID int64 `json:"matchId"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusCreated, `{"purchaseId":"p-100","downloadUrl":"/api/purchases/p-100/receipt","tickets":[{"code":"OC-13-ZX81K2PQ"}]}`)
	})
	r.Get("/api/purchases/{id}/receipt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF " + chi.URLParam(r, "id")))
	})
	fb.Server = httptest.NewServer(r)
	t.Cleanup(fb.Close)
	return fb
}

func newTestApp(t *testing.T, fb *fakeBackend, creds session.Store) *App {
	t.Helper()
	f := &Factory{
		BaseURL:    fb.URL,
		QR:         receipt.NewQRGenerator("test"),
		ReceiptDir: t.TempDir(),
	}
	a := f.New("s-1", creds)
	require.NoError(t, a.Start(context.Background()))
	return a
}

func TestHome_ShowsNextThreeWithAvailability(t *testing.T) {
	a := newTestApp(t, newFakeBackend(t), nil)

	home := a.State().Home
	assert.False(t, home.Loading)
	require.Len(t, home.Matches, 3)
	assert.Equal(t, int64(1), home.Matches[0].ID)
	assert.Equal(t, 25, home.Matches[0].AvailabilityPercent)
	assert.Equal(t, int64(2), home.Matches[1].ID)
	assert.Equal(t, 10, home.Matches[1].AvailabilityPercent)
	assert.Equal(t, "Once Caldas", home.Matches[1].Home)
	assert.Equal(t, int64(3), home.Matches[2].ID)
	assert.Equal(t, 75, home.Matches[2].AvailabilityPercent)
	assert.Equal(t, "20:00 05/11/2025", home.Matches[0].FormattedDateTime)
}

func TestAuth(t *testing.T) {
	creds := session.NewMemoryStore("")
	a := newTestApp(t, newFakeBackend(t), creds)
	ctx := context.Background()

	assert.ErrorIs(t, a.Login(ctx, LoginForm{Email: "hincha@oc.co"}), ErrMissingCredentials)
	assert.Equal(t, navigation.PageHome, a.Page())

	require.NoError(t, a.Login(ctx, LoginForm{Email: "admin@oc.co", Password: "x", Role: "admin", Token: "tok-9"}))
	assert.Equal(t, navigation.PageAdmin, a.Page())
	assert.Equal(t, navigation.RoleAdmin, a.State().Role)
	tok, _ := creds.Token(ctx)
	assert.Equal(t, "tok-9", tok)
	assert.Len(t, a.Admin().Matches(), 4, "admin page loads on mount")

	require.NoError(t, a.Logout(ctx))
	assert.Equal(t, navigation.PageHome, a.Page())
	tok, _ = creds.Token(ctx)
	assert.Empty(t, tok)

	assert.ErrorIs(t, a.Register(ctx, RegisterForm{Name: "Ana", Email: "ana@oc.co", Password: "a", Confirm: "b"}), ErrPasswordMismatch)
	assert.ErrorIs(t, a.Register(ctx, RegisterForm{Email: "ana@oc.co", Password: "a", Confirm: "a"}), ErrMissingFields)
	require.NoError(t, a.Register(ctx, RegisterForm{Name: "Ana", Email: "ana@oc.co", Password: "a", Confirm: "a"}))
	assert.Equal(t, navigation.PageUser, a.Page())
	assert.Equal(t, navigation.RoleUser, a.State().Role)
}

func TestPurchaseToConfirmation(t *testing.T) {
	fb := newFakeBackend(t)
	a := newTestApp(t, fb, session.NewMemoryStore("tok"))
	ctx := context.Background()

	require.NoError(t, a.Login(ctx, LoginForm{Email: "hincha@oc.co", Password: "x"}))
	st := a.State()
	assert.Len(t, st.Matches, 3, "inactive matches are not on sale")

	assert.ErrorIs(t, a.SelectMatch(ctx, 2), ErrMatchNotFound)
	require.NoError(t, a.SelectMatch(ctx, 3))
	require.NoError(t, a.SelectSection(3))
	assert.True(t, a.State().Purchase.CanBuy)

	data, err := a.Buy(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Norte", data.Section.Name)
	assert.Equal(t, "Bearer tok", fb.lastAuth.Load())
	assert.NotEmpty(t, fb.lastKey.Load())

	assert.Equal(t, navigation.PageConfirmation, a.Page())
	view, err := a.Confirmation()
	require.NoError(t, err)
	assert.Equal(t, "OC-13-ZX81K2PQ", view.TicketCode)
	assert.Equal(t, "$35.000", view.Price)

	png, err := a.QRCode()
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	doc, name, err := a.Receipt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p-100.pdf", name)
	assert.Equal(t, "%PDF p-100", string(doc))

	path, err := a.SaveReceipt(ctx)
	require.NoError(t, err)
	assert.FileExists(t, path)

	// leaving the confirmation page drops the receipt
	require.NoError(t, a.Navigate(ctx, "user", nil))
	_, err = a.Confirmation()
	assert.ErrorIs(t, err, ErrNoPurchase)
	_, _, err = a.Receipt(ctx)
	assert.ErrorIs(t, err, ErrNoPurchase)
	assert.Equal(t, purchase.NoMatchSelected, a.State().Purchase.State)
}

func TestSelectMatch_SectionFailureIsANotice(t *testing.T) {
	a := newTestApp(t, newFakeBackend(t), nil)
	ctx := context.Background()
	require.NoError(t, a.Navigate(ctx, "user", "user"))

	require.NoError(t, a.SelectMatch(ctx, 4))
	snap := a.State().Purchase
	assert.Empty(t, snap.Sections)
	assert.Equal(t, "Secciones no disponibles", snap.Notice)
}

func TestNavigate_UnknownPage(t *testing.T) {
	a := newTestApp(t, newFakeBackend(t), nil)
	assert.ErrorIs(t, a.Navigate(context.Background(), "perfil", nil), navigation.ErrUnknownPage)
}
