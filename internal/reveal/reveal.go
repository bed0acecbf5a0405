// Package reveal renders entrance-transition triggers.
//
// Every section that fades in when scrolled into view is marked up through
// Section, and a single browser observer (web/static/portfolio.js) watches all
// of them. Once an element intersects at its threshold it gets the
// "is-visible" class and is never observed again.
package reveal

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"
)

// DefaultThreshold is the fraction of a section that must be on screen.
const DefaultThreshold = 0.1

// Options tune a single trigger.
type Options struct {
	Threshold float64
	Delay     time.Duration
	Class     string // extra class added next to "reveal"
}

// Option mutates Options.
type Option func(*Options)

// WithThreshold sets the intersection ratio, clamped to [0, 1].
func WithThreshold(t float64) Option {
	return func(o *Options) {
		switch {
		case t < 0:
			t = 0
		case t > 1:
			t = 1
		}
		o.Threshold = t
	}
}

// WithDelay sets the CSS transition delay.
func WithDelay(d time.Duration) Option {
	return func(o *Options) { o.Delay = d }
}

// WithClass adds a class used to pick the entrance direction.
func WithClass(c string) Option {
	return func(o *Options) { o.Class = c }
}

// Section returns the attributes for an observed element with the given id.
// An empty id renders an anonymous trigger (used for cards inside a section).
func Section(id string, opts ...Option) template.HTMLAttr {
	o := Options{Threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	var b strings.Builder
	if id != "" {
		fmt.Fprintf(&b, `id="%s" `, template.HTMLEscapeString(id))
	}
	class := "reveal"
	if o.Class != "" {
		class += " " + template.HTMLEscapeString(o.Class)
	}
	fmt.Fprintf(&b, `class="%s" data-reveal data-reveal-threshold="%s"`,
		class, strconv.FormatFloat(o.Threshold, 'f', -1, 64))
	if o.Delay > 0 {
		fmt.Fprintf(&b, ` style="transition-delay: %dms"`, o.Delay.Milliseconds())
	}
	return template.HTMLAttr(b.String())
}

// Stagger returns base + i*step, the delay of the i-th item in a list.
func Stagger(base, step time.Duration, i int) time.Duration {
	if i < 0 {
		i = 0
	}
	return base + time.Duration(i)*step
}

// Card delay inside a revealed section.
func CardDelay(i int) time.Duration {
	return Stagger(600*time.Millisecond, 200*time.Millisecond, i)
}

// SkillDelay is when the skill-bar fill starts once the skills section shows:
// a 500ms lead, 500ms per category and 100ms per skill.
func SkillDelay(category, skill int) time.Duration {
	return 500*time.Millisecond + Stagger(0, 500*time.Millisecond, category) + Stagger(0, 100*time.Millisecond, skill)
}

// FuncMap exposes the helpers to html/template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"reveal": func(id string) template.HTMLAttr { return Section(id) },
		"revealCard": func(i int, class string) template.HTMLAttr {
			return Section("", WithDelay(CardDelay(i)), WithClass(class))
		},
		"skillDelay": func(category, skill int) int64 {
			return SkillDelay(category, skill).Milliseconds()
		},
		"cardSide": func(i int) string {
			if i%2 == 0 {
				return "from-left"
			}
			return "from-right"
		},
	}
}
