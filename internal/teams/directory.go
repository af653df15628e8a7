package teams

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"oc-ticketing/internal/apiclient"
	"oc-ticketing/internal/logger"
	"oc-ticketing/internal/models"
)

// excluded matches national, youth and women's squads by name.
var excluded = regexp.MustCompile(`(?i)selecci[oó]n|national|\bu-?(1[5-9]|2[0-3])\b|\bsub[- ]?\d{2}\b|women|femenin|feminin`)

type rawTeam struct {
	StrTeam       string `json:"strTeam"`
	StrBadge      string `json:"strBadge"`
	StrStadium    string `json:"strStadium"`
	IntFormedYear string `json:"intFormedYear"`
}

type rawResponse struct {
	Teams []rawTeam `json:"teams"`
}

// Directory reads the public team directory for one sport and country. It
// never sends the user's credentials.
type Directory struct {
	client  *apiclient.Client
	baseURL string
	sport   string
	country string
	logger  *logger.Logger
}

func NewDirectory(baseURL, sport, country string, l *logger.Logger, opts ...apiclient.Option) *Directory {
	if l == nil {
		l = logger.Nop()
	}
	return &Directory{
		client:  apiclient.New(baseURL, nil, opts...),
		baseURL: baseURL,
		sport:   sport,
		country: country,
		logger:  l,
	}
}

func (d *Directory) endpoint() string {
	q := url.Values{}
	q.Set("s", d.sport)
	q.Set("c", d.country)
	return d.baseURL + "?" + q.Encode()
}

// Fetch returns the club teams sorted by name.
func (d *Directory) Fetch(ctx context.Context) ([]models.Team, error) {
	var resp rawResponse
	if err := d.client.GetJSON(ctx, d.endpoint(), &resp); err != nil {
		return nil, fmt.Errorf("fetch team directory: %w", err)
	}

	out := make([]models.Team, 0, len(resp.Teams))
	for _, rt := range resp.Teams {
		name := strings.TrimSpace(rt.StrTeam)
		if name == "" || Excluded(name) {
			continue
		}
		year, _ := strconv.Atoi(rt.IntFormedYear)
		out = append(out, models.Team{
			Name:       name,
			Badge:      rt.StrBadge,
			Stadium:    rt.StrStadium,
			FormedYear: year,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})

	d.logger.Debug("TEAMS", fmt.Sprintf("Loaded %d of %d teams", len(out), len(resp.Teams)))
	return out, nil
}

func Excluded(name string) bool {
	return excluded.MatchString(name)
}

// Find looks a team up by name, ignoring case and surrounding spaces.
func Find(list []models.Team, name string) (models.Team, bool) {
	name = strings.TrimSpace(name)
	for _, t := range list {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return models.Team{}, false
}
