package reveal

import (
	"bytes"
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSection_Defaults(t *testing.T) {
	got := string(Section("about"))
	assert.Equal(t, `id="about" class="reveal" data-reveal data-reveal-threshold="0.1"`, got)
}

func TestSection_Options(t *testing.T) {
	got := string(Section("", WithThreshold(1.5), WithDelay(800*time.Millisecond), WithClass("from-left")))
	assert.Equal(t, `class="reveal from-left" data-reveal data-reveal-threshold="1" style="transition-delay: 800ms"`, got)

	got = string(Section("x", WithThreshold(-3)))
	assert.Contains(t, got, `data-reveal-threshold="0"`)
}

func TestSection_EscapesID(t *testing.T) {
	got := string(Section(`a"b`))
	assert.Contains(t, got, `id="a&#34;b"`)
}

func TestDelays(t *testing.T) {
	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"first card", CardDelay(0), 600 * time.Millisecond},
		{"third card", CardDelay(2), 1000 * time.Millisecond},
		{"negative index", CardDelay(-1), 600 * time.Millisecond},
		{"first skill", SkillDelay(0, 0), 500 * time.Millisecond},
		{"second category fourth skill", SkillDelay(1, 3), 1300 * time.Millisecond},
		{"third category sixth skill", SkillDelay(2, 5), 2000 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestFuncMap_RendersInTemplate(t *testing.T) {
	tmpl := template.Must(template.New("t").Funcs(FuncMap()).Parse(
		`<section {{reveal "skills"}}></section><div {{revealCard 1 (cardSide 1)}}></div><i data-delay="{{skillDelay 1 2}}"></i>`))

	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, nil))
	out := buf.String()

	assert.Contains(t, out, `<section id="skills" class="reveal" data-reveal data-reveal-threshold="0.1">`)
	assert.Contains(t, out, `class="reveal from-right"`)
	assert.Contains(t, out, `transition-delay: 800ms`)
	assert.Contains(t, out, `data-delay="1200"`)
}
