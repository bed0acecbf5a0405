// Package content holds the portfolio's static copy: profile, hero phrases,
// projects, skills and contact details. It is plain configuration data loaded
// from YAML and never mutated after validation.
package content

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid portfolio content")

type Portfolio struct {
	Meta     Meta            `yaml:"meta"`
	Profile  Profile         `yaml:"profile"`
	Hero     Hero            `yaml:"hero"`
	About    About           `yaml:"about"`
	Projects []Project       `yaml:"projects"`
	Skills   []SkillCategory `yaml:"skills"`
	Contact  Contact         `yaml:"contact"`
	Nav      []NavLink       `yaml:"nav"`
}

type Meta struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
}

type Profile struct {
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Location string `yaml:"location"`
	Email    string `yaml:"email"`
	Photo    string `yaml:"photo"`
}

type Hero struct {
	Greeting string   `yaml:"greeting"`
	Phrases  []string `yaml:"phrases"`
	Tagline  string   `yaml:"tagline"`
	Badges   []string `yaml:"badges"`
}

// Longest returns the widest phrase; the page reserves its width so the
// layout does not shift while typing.
func (h Hero) Longest() string {
	var longest string
	for _, p := range h.Phrases {
		if len([]rune(p)) > len([]rune(longest)) {
			longest = p
		}
	}
	return longest
}

type About struct {
	Heading    string      `yaml:"heading"`
	Title      string      `yaml:"title"`
	Summary    string      `yaml:"summary"`
	Highlights []Highlight `yaml:"highlights"`
}

type Highlight struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type Project struct {
	ID          int      `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Image       string   `yaml:"image"`
	Tags        []string `yaml:"tags"`
	TechStack   []string `yaml:"tech_stack"`
	Tools       []string `yaml:"tools"`
	GitHub      string   `yaml:"github"`
	Demo        string   `yaml:"demo"`
}

type SkillCategory struct {
	Name   string  `yaml:"name"`
	Skills []Skill `yaml:"skills"`
}

type Skill struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

type Contact struct {
	Heading     string       `yaml:"heading"`
	Summary     string       `yaml:"summary"`
	Topics      []Topic      `yaml:"topics"`
	Interests   []string     `yaml:"interests"`
	SocialLinks []SocialLink `yaml:"social_links"`
}

// Topic is one option of the contact form's subject select.
type Topic struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

type SocialLink struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Icon string `yaml:"icon"`
}

type NavLink struct {
	Label  string `yaml:"label"`
	Anchor string `yaml:"anchor"`
}

// Href is the in-page link for the nav entry.
func (n NavLink) Href() string {
	return "/#" + strings.TrimPrefix(n.Anchor, "#")
}

// HasTopic reports whether value is one of the configured subjects.
func (c Contact) HasTopic(value string) bool {
	for _, t := range c.Topics {
		if t.Value == value {
			return true
		}
	}
	return false
}

// TopicLabel returns the display label for value, or value itself.
func (c Contact) TopicLabel(value string) string {
	for _, t := range c.Topics {
		if t.Value == value {
			return t.Label
		}
	}
	return value
}

// Validate checks the invariants templates and handlers rely on.
func (p *Portfolio) Validate() error {
	var problems []string

	if strings.TrimSpace(p.Profile.Name) == "" {
		problems = append(problems, "profile.name is required")
	}

	ids := make(map[int]bool, len(p.Projects))
	for i, pr := range p.Projects {
		if ids[pr.ID] {
			problems = append(problems, fmt.Sprintf("projects[%d]: duplicate id %d", i, pr.ID))
		}
		ids[pr.ID] = true
		if strings.TrimSpace(pr.Title) == "" {
			problems = append(problems, fmt.Sprintf("projects[%d]: title is required", i))
		}
	}

	for _, cat := range p.Skills {
		for _, s := range cat.Skills {
			if s.Level < 0 || s.Level > 100 {
				problems = append(problems, fmt.Sprintf("skills %q/%q: level %d outside 0..100", cat.Name, s.Name, s.Level))
			}
		}
	}

	seen := make(map[string]bool, len(p.Contact.Topics))
	for i, t := range p.Contact.Topics {
		switch {
		case t.Value == "":
			problems = append(problems, fmt.Sprintf("contact.topics[%d]: value is required", i))
		case seen[t.Value]:
			problems = append(problems, fmt.Sprintf("contact.topics[%d]: duplicate value %q", i, t.Value))
		}
		seen[t.Value] = true
	}

	for i, l := range p.Contact.SocialLinks {
		u, err := url.Parse(l.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, fmt.Sprintf("contact.social_links[%d]: %q is not an absolute http(s) URL", i, l.URL))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
