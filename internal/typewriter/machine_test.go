package typewriter

import (
	"encoding/json"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeroConfig(phrases ...string) Config {
	return Config{Phrases: phrases}
}

// texts runs n ticks and returns the visible text of each.
func texts(m *Machine, cfg Config, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		f, _ := m.Next(cfg)
		out = append(out, f.Text)
	}
	return out
}

// dedupe collapses consecutive repeats so the milestones are easy to compare.
func dedupe(in []string) []string {
	var out []string
	for _, s := range in {
		if len(out) > 0 && out[len(out)-1] == s {
			continue
		}
		out = append(out, s)
	}
	return out
}

func TestMachine_ExampleSequence(t *testing.T) {
	cfg := zeroConfig("A", "BC")
	m := NewMachine(cfg.Phrases)

	got := texts(m, cfg, 14)
	want := []string{
		"", "A", "A", // type A, hold full
		"", "", // delete, hold empty
		"", "B", "BC", "BC", // type BC, hold full
		"B", "", "", // delete, hold empty
		"", "A", // wrapped back to A
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"", "A", "", "B", "BC", "B", "", "A"}, dedupe(got))
}

func TestMachine_TypingGrowsOneCharPerTick(t *testing.T) {
	phrase := "Digital Design Engineer"
	cfg := zeroConfig(phrase)
	m := NewMachine(cfg.Phrases)

	for k := 0; k <= len(phrase); k++ {
		f, d := m.Next(cfg)
		require.Equal(t, Typing, f.Phase, "tick %d", k)
		require.Equal(t, phrase[:k], f.Text, "tick %d", k)
		assert.Equal(t, cfg.TypeDelay, d)
	}

	f, _ := m.Next(cfg)
	assert.Equal(t, PausedFull, f.Phase)
	assert.Equal(t, phrase, f.Text)
}

func TestMachine_DeletingShrinksOneCharPerTick(t *testing.T) {
	phrase := "Student"
	cfg := zeroConfig(phrase)
	m := NewMachine(cfg.Phrases)

	// Type and hold.
	for m.Frame().Phase != PausedFull {
		m.Next(cfg)
	}

	prev := utf8.RuneCountInString(m.Frame().Text)
	for {
		f, _ := m.Next(cfg)
		if f.Phase != Deleting {
			assert.Equal(t, PausedEmpty, f.Phase)
			assert.Empty(t, f.Text)
			break
		}
		n := utf8.RuneCountInString(f.Text)
		require.Equal(t, prev-1, n)
		require.Equal(t, phrase[:n], f.Text)
		prev = n
	}
	assert.Equal(t, 0, prev)
}

func TestMachine_LengthStaysInBounds(t *testing.T) {
	cfg := zeroConfig("Electronics Enthusiast", "", "Student", "挨拶")
	m := NewMachine(cfg.Phrases)

	for i := 0; i < 500; i++ {
		f, _ := m.Next(cfg)
		require.GreaterOrEqual(t, f.Index, 0)
		require.Less(t, f.Index, len(cfg.Phrases))
		phrase := cfg.Phrases[f.Index]
		n := utf8.RuneCountInString(f.Text)
		require.LessOrEqual(t, n, utf8.RuneCountInString(phrase))
		require.True(t, utf8.ValidString(f.Text), "frame %d split a rune: %q", i, f.Text)
		require.Equal(t, string([]rune(phrase)[:n]), f.Text)
	}
}

func TestMachine_CycleAdvancesIndexWithWrap(t *testing.T) {
	cfg := zeroConfig("one", "two", "three")
	m := NewMachine(cfg.Phrases)

	m.Next(cfg) // leave Idle
	for cycle := 0; cycle < 7; cycle++ {
		start := m.Frame().Index
		// Run until the next phrase starts typing.
		for {
			f, _ := m.Next(cfg)
			if f.Phase == Typing && f.Text == "" {
				assert.Equal(t, (start+1)%len(cfg.Phrases), f.Index, "cycle %d", cycle)
				break
			}
		}
	}
}

func TestMachine_DelaysFollowPhase(t *testing.T) {
	cfg := Config{
		Phrases:     []string{"ab"},
		TypeDelay:   1 * time.Millisecond,
		DeleteDelay: 2 * time.Millisecond,
		PauseFull:   3 * time.Millisecond,
		PauseEmpty:  4 * time.Millisecond,
	}
	m := NewMachine(cfg.Phrases)

	want := map[Phase]time.Duration{
		Typing:      cfg.TypeDelay,
		Deleting:    cfg.DeleteDelay,
		PausedFull:  cfg.PauseFull,
		PausedEmpty: cfg.PauseEmpty,
	}
	for i := 0; i < 20; i++ {
		f, d := m.Next(cfg)
		assert.Equal(t, want[f.Phase], d, "phase %s", f.Phase)
	}
}

func TestMachine_EmptyPlaylistStaysIdle(t *testing.T) {
	cfg := zeroConfig()
	m := NewMachine(nil)

	for i := 0; i < 10; i++ {
		f, d := m.Next(cfg)
		assert.Equal(t, Idle, f.Phase)
		assert.Empty(t, f.Text)
		assert.Zero(t, d)
	}
}

func TestMachine_EmptyPhraseSkipsDeleting(t *testing.T) {
	cfg := zeroConfig("")
	m := NewMachine(cfg.Phrases)

	var phases []Phase
	for i := 0; i < 5; i++ {
		f, _ := m.Next(cfg)
		assert.Empty(t, f.Text)
		phases = append(phases, f.Phase)
	}
	assert.Equal(t, []Phase{Typing, PausedFull, PausedEmpty, Typing, PausedFull}, phases)
}

func TestMachine_CancelIsTerminal(t *testing.T) {
	cfg := zeroConfig("hello")
	m := NewMachine(cfg.Phrases)
	m.Next(cfg)
	m.Next(cfg)
	m.Cancel()

	for i := 0; i < 3; i++ {
		f, d := m.Next(cfg)
		assert.Equal(t, Cancelled, f.Phase)
		assert.Equal(t, "h", f.Text)
		assert.Zero(t, d)
	}
}

func TestFrame_JSON(t *testing.T) {
	b, err := json.Marshal(Frame{Text: "BC", Phase: PausedFull, Index: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"BC","phase":"paused-full","index":1}`, string(b))
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "typing", Typing.String())
	assert.Equal(t, "unknown", Phase(42).String())
	assert.True(t, PausedEmpty.Paused())
	assert.False(t, Deleting.Paused())
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig([]string{"x"})
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 80*time.Millisecond, cfg.TypeDelay)
	assert.Equal(t, 40*time.Millisecond, cfg.DeleteDelay)
	assert.Equal(t, 1800*time.Millisecond, cfg.PauseFull)
	assert.Equal(t, 500*time.Millisecond, cfg.PauseEmpty)

	cfg.PauseEmpty = -time.Millisecond
	assert.ErrorIs(t, cfg.Validate(), ErrNegativeDelay)
}
