package content

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/micportal/core/store"
)

var ErrUnknownSection = errors.New("unknown site section")

// Section is a listing of the public site.
type Section string

const (
	SectionResources      Section = "resources"
	SectionTopResources   Section = "resources/top"
	SectionUpcomingEvents Section = "events/upcoming"
	SectionEvents         Section = "events/all"
	SectionAboutCards     Section = "about/cards"
	SectionAboutFeatures  Section = "about/features"
	SectionTeam           Section = "about/team"
	SectionTestimonials   Section = "about/testimonials"
	SectionStats          Section = "about/stats"
)

var Sections = []Section{
	SectionResources, SectionTopResources, SectionUpcomingEvents, SectionEvents,
	SectionAboutCards, SectionAboutFeatures, SectionTeam, SectionTestimonials, SectionStats,
}

var sectionTypes = map[Section]Type{
	SectionResources:      TypeResource,
	SectionTopResources:   TypeResource,
	SectionUpcomingEvents: TypeEvent,
	SectionEvents:         TypeEvent,
	SectionAboutCards:     TypeAboutCard,
	SectionAboutFeatures:  TypeAboutFeature,
	SectionTeam:           TypeTeamMember,
	SectionTestimonials:   TypeAboutTestimonial,
	SectionStats:          TypeAboutStat,
}

func ParseSection(s string) (Section, error) {
	s = strings.Trim(strings.ToLower(strings.TrimSpace(s)), "/")
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownSection, "%q", s)
}

// Type is the content type listed in the section.
func (sec Section) Type() Type { return sectionTypes[sec] }

// Limit is the most blocks the section shows, 0 when it shows them all.
func (sec Section) Limit() int {
	switch sec {
	case SectionTopResources:
		return 6
	case SectionUpcomingEvents:
		return 3
	}
	return 0
}

const defaultPrice = "Free"

// Block is a content block as the public site shows it.
type Block struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	ImageURL         string `json:"image_url,omitempty"`
	Order            int    `json:"order"`
	EventDate        string `json:"event_date,omitempty"` // YYYY-MM-DD, empty when unknown
	Venue            string `json:"venue,omitempty"`
	Price            string `json:"price,omitempty"`
	RegistrationLink string `json:"registration_link,omitempty"`
	Data             Data   `json:"content_data,omitempty"`
}

// UnmarshalJSON reads the about, resource and event shapes as well as raw content rows.
// Event fields missing from the top level are taken from content_data.
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID               string  `json:"id"`
		Type             Type    `json:"content_type"`
		Title            string  `json:"title"`
		Description      *string `json:"description"`
		ImageURL         *string `json:"image_url"`
		FileURL          *string `json:"file_url"`
		Order            *int    `json:"order"`
		OrderIndex       int     `json:"order_index"`
		EventDate        *string `json:"event_date"`
		Venue            *string `json:"venue"`
		Price            *string `json:"price"`
		RegistrationLink *string `json:"registration_link"`
		Data             Data    `json:"content_data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*b = Block{
		ID:               raw.ID,
		Title:            raw.Title,
		Description:      deref(raw.Description),
		ImageURL:         deref(raw.ImageURL),
		Order:            raw.OrderIndex,
		EventDate:        eventDay(orData(raw.EventDate, raw.Data, "event_date")),
		Venue:            orData(raw.Venue, raw.Data, "venue"),
		Price:            orData(raw.Price, raw.Data, "price"),
		RegistrationLink: orData(raw.RegistrationLink, raw.Data, "registration_link"),
		Data:             raw.Data,
	}
	if raw.Order != nil {
		b.Order = *raw.Order
	}
	if b.ImageURL == "" {
		b.ImageURL = deref(raw.FileURL)
	}
	if len(b.Data) == 0 {
		b.Data = nil
	}
	if raw.Type == TypeEvent && b.Price == "" {
		b.Price = defaultPrice
	}
	return nil
}

func orData(v *string, d Data, key string) string {
	if v != nil && *v != "" {
		return *v
	}
	return d.String(key)
}

// eventDay reduces a date or a timestamp to its day. The zero time means no date.
func eventDay(s string) string {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		if t.IsZero() {
			return ""
		}
		return t.Format(dateLayout)
	}
	return s
}

const dateLayout = "2006-01-02"

// SitePortal serves the public site listings.
type SitePortal interface {
	SiteSection(ctx context.Context, sec Section) ([]Block, error)
}

type (
	SiteListing struct {
		State   store.State `json:"state"`
		Section Section     `json:"section"`
		Items   []Block     `json:"items"`
	}

	// About gathers the sections of the about page.
	About struct {
		Cards        []Block `json:"cards"`
		Features     []Block `json:"features"`
		Team         []Block `json:"team"`
		Testimonials []Block `json:"testimonials"`
		Stats        []Block `json:"stats"`
	}
)

// Site reads the public site listings. Each section is cached in its own store,
// so concurrent readers of a section share one portal call.
type Site struct {
	sections map[Section]*store.Store[Block]
}

func NewSite(portal SitePortal) *Site {
	s := &Site{sections: make(map[Section]*store.Store[Block], len(Sections))}
	for _, sec := range Sections {
		sec := sec
		s.sections[sec] = store.New(func(ctx context.Context) ([]Block, error) {
			return portal.SiteSection(ctx, sec)
		})
	}
	return s
}

// Section loads the blocks of a section in the order the portal lists them, up to the section limit.
func (s *Site) Section(ctx context.Context, sec Section) (SiteListing, error) {
	st, ok := s.sections[sec]
	if !ok {
		return SiteListing{}, errors.Wrapf(ErrUnknownSection, "%q", sec)
	}
	snap, err := st.Refresh(ctx)
	listing := SiteListing{State: snap.State, Section: sec, Items: []Block{}}
	if err != nil {
		return listing, errors.Wrapf(err, "loading %s", sec)
	}
	items := snap.Items
	if n := sec.Limit(); n > 0 && len(items) > n {
		items = items[:n]
	}
	listing.Items = append(listing.Items, items...)
	return listing, nil
}

// About loads the about page sections concurrently. It fails when any section fails.
func (s *Site) About(ctx context.Context) (About, error) {
	var about About
	parts := []struct {
		sec Section
		dst *[]Block
	}{
		{SectionAboutCards, &about.Cards},
		{SectionAboutFeatures, &about.Features},
		{SectionTeam, &about.Team},
		{SectionTestimonials, &about.Testimonials},
		{SectionStats, &about.Stats},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range parts {
		p := p
		g.Go(func() error {
			listing, err := s.Section(ctx, p.sec)
			if err != nil {
				return err
			}
			*p.dst = listing.Items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return About{}, err
	}
	return about, nil
}
