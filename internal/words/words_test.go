package words

import (
	mrand "math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMixedEntries(t *testing.T) {
	p, err := Parse([]byte(`[
		{"word": " rules ", "definition": "Regulations."},
		"crane",
		{"word": "CRANE", "definition": "dup"},
		"toolong",
		"ab1de",
		{"word": "slate"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"RULES", "CRANE", "SLATE"}, p.Words())

	def, ok := p.Definition("rules")
	assert.True(t, ok)
	assert.Equal(t, "Regulations.", def)
	_, ok = p.Definition("CRANE")
	assert.False(t, ok, "first occurrence wins, and it had no definition")

	total, defined := p.Stats()
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, defined)
}

func TestParseRejectsEmptyAndMalformed(t *testing.T) {
	_, err := Parse([]byte(`["abc", "toolong"]`))
	assert.ErrorIs(t, err, ErrEmptyPool)

	_, err = Parse([]byte(`{"word":"crane"}`))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.json")
	require.NoError(t, os.WriteFile(path, []byte(`["pedal","speed"]`), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.True(t, p.Contains("Pedal"))
	assert.False(t, p.Contains("CRANE"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestEmbeddedPool(t *testing.T) {
	p, err := Embedded()
	require.NoError(t, err)
	for _, w := range []string{"RULES", "CRANE", "SLATE", "SALET", "AROSE"} {
		assert.True(t, p.Contains(w), w)
	}
	for _, w := range p.Words() {
		assert.True(t, Valid(w), w)
	}
}

func TestRandomStaysInPool(t *testing.T) {
	p, err := FromWords("RULES", "CRANE", "SLATE")
	require.NoError(t, err)
	rng := mrand.New(mrand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		assert.True(t, p.Contains(p.Random(rng)))
		assert.True(t, p.Contains(p.Random(nil)))
	}
}

func TestDailyIsDeterministic(t *testing.T) {
	p, err := Embedded()
	require.NoError(t, err)
	day := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, p.Daily(day, "salt"), p.Daily(day.Add(30*time.Minute-time.Hour), "salt"))
	assert.Equal(t, "2025-03-01", DateKey(day))
	assert.Equal(t, 0, DailyIndex(day, "salt", 0))
}

func TestValidateGuess(t *testing.T) {
	p, err := FromWords("RULES")
	require.NoError(t, err)

	w, err := ValidateGuess(" rules ", p, true)
	require.NoError(t, err)
	assert.Equal(t, "RULES", w)

	_, err = ValidateGuess("CRANE", p, true)
	assert.ErrorIs(t, err, ErrNotInPool)

	w, err = ValidateGuess("crane", p, false)
	require.NoError(t, err)
	assert.Equal(t, "CRANE", w)

	_, err = ValidateGuess("CR4NE", p, false)
	assert.ErrorIs(t, err, ErrInvalidGuess)
}
