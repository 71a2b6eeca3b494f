package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var ErrUnknownTab = errors.New("unknown content tab")

// Type is the kind of a content block of the public site.
type Type string

const (
	TypeResource         Type = "resource"
	TypeAboutCard        Type = "about_card"
	TypeAboutFeature     Type = "about_feature"
	TypeAboutStat        Type = "about_stat"
	TypeAboutTestimonial Type = "about_testimonial"
	TypeTeamMember       Type = "team_member"
	TypeEvent            Type = "event"
)

var typeLabels = map[Type]string{
	TypeResource:         "Resource",
	TypeAboutCard:        "About Card",
	TypeAboutFeature:     "Feature",
	TypeAboutStat:        "Stat",
	TypeAboutTestimonial: "Testimonial",
	TypeTeamMember:       "Team Member",
	TypeEvent:            "Event",
}

func (t Type) Known() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label is the human readable name of the type; unknown types are shown as is.
func (t Type) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Tab is a section of the content admin screen.
type Tab string

const (
	TabResources Tab = "resources"
	TabAbout     Tab = "about"
	TabEvents    Tab = "events"
)

var Tabs = []Tab{TabResources, TabAbout, TabEvents}

var tabTypes = map[Tab][]Type{
	TabResources: {TypeResource},
	TabAbout:     {TypeAboutCard, TypeAboutFeature, TypeAboutStat, TypeAboutTestimonial, TypeTeamMember},
	TabEvents:    {TypeEvent},
}

func ParseTab(s string) (Tab, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TabResources, nil
	}
	for _, tab := range Tabs {
		if string(tab) == s {
			return tab, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownTab, "%q", s)
}

// Types lists the content types shown under the tab.
func (tab Tab) Types() []Type { return tabTypes[tab] }

func (tab Tab) Has(t Type) bool {
	for _, tt := range tabTypes[tab] {
		if tt == t {
			return true
		}
	}
	return false
}

// TabOf returns the tab showing content of type t, resources for unknown types.
func TabOf(t Type) Tab {
	for _, tab := range Tabs {
		if tab.Has(t) {
			return tab
		}
	}
	return TabResources
}

// Data holds the type specific fields of a content block (role, icon, stat_value, event details...).
type Data map[string]interface{}

// UnmarshalJSON accepts an object or a JSON encoded string. Anything malformed decodes as an empty object.
func (d *Data) UnmarshalJSON(b []byte) error {
	*d = Data{}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		b = []byte(s)
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return nil
	}
	*d = m
	return nil
}

// String returns the key's value as text, "" when missing.
func (d Data) String(key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Content is a block of the public site managed from the admin console.
type Content struct {
	ID          string `json:"id"`
	Type        Type   `json:"content_type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	OrderIndex  int    `json:"order_index"`
	IsActive    bool   `json:"is_active"`
	Data        Data   `json:"content_data"`
}

// UnmarshalJSON tolerates null strings and a missing content_data.
func (c *Content) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID          string  `json:"id"`
		Type        Type    `json:"content_type"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		ImageURL    *string `json:"image_url"`
		OrderIndex  int     `json:"order_index"`
		IsActive    bool    `json:"is_active"`
		Data        Data    `json:"content_data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = Content{
		ID:          raw.ID,
		Type:        raw.Type,
		Title:       raw.Title,
		Description: deref(raw.Description),
		ImageURL:    deref(raw.ImageURL),
		OrderIndex:  raw.OrderIndex,
		IsActive:    raw.IsActive,
		Data:        raw.Data,
	}
	if c.Data == nil {
		c.Data = Data{}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
