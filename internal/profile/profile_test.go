package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
)

func newService() (*Service, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewService(store.NewMemoryKV(), func() time.Time { return now }), &now
}

func TestValidation(t *testing.T) {
	assert.True(t, ValidEmail(" a@b.co "))
	for _, bad := range []string{"", "a@b", "a b@c.d", "@b.co", "a@@b.co"} {
		assert.False(t, ValidEmail(bad), bad)
	}
	assert.True(t, ValidName("Al"))
	assert.False(t, ValidName("  A  "))
}

func TestSignUpAndLogin(t *testing.T) {
	ctx := context.Background()
	s, now := newService()

	p, err := s.SignUp(ctx, "  Ann@Example.COM ", " Ann Lee ")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", p.Email)
	assert.Equal(t, "Ann Lee", p.FullName)
	assert.Equal(t, now.UnixMilli(), p.CreatedAt)
	assert.NotNil(t, p.BestGames)

	_, err = s.SignUp(ctx, "ann@example.com", "Other")
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = s.SignUp(ctx, "nope", "Name")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = s.SignUp(ctx, "b@example.com", "B")
	assert.ErrorIs(t, err, ErrInvalidName)

	*now = now.Add(48 * time.Hour)
	p, err = s.Login(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), p.LastPlayedAt)

	_, err = s.Login(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordGameKeepsBestThree(t *testing.T) {
	ctx := context.Background()
	s, _ := newService()
	_, err := s.SignUp(ctx, "ann@example.com", "Ann")
	require.NoError(t, err)

	results := []game.Result{
		{Word: "RULES", Attempts: 4, TimeTaken: 30, Status: game.PhaseWon},
		{Word: "CRANE", Attempts: 6, TimeTaken: 10, Status: game.PhaseLost},
		{Word: "SLATE", Attempts: 3, TimeTaken: 50, Status: game.PhaseWon},
		{Word: "PEDAL", Attempts: 3, TimeTaken: 20, Status: game.PhaseWon},
		{Word: "SPEED", Attempts: 5, TimeTaken: 5, Status: game.PhaseWon},
	}
	var p Profile
	for _, r := range results {
		p, err = s.RecordGame(ctx, "ann@example.com", r)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, p.TotalGamesPlayed)
	require.Len(t, p.BestGames, 3)
	assert.Equal(t, []string{"PEDAL", "SLATE", "RULES"},
		[]string{p.BestGames[0].Word, p.BestGames[1].Word, p.BestGames[2].Word})

	got, err := s.Get(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = s.RecordGame(ctx, "ghost@example.com", results[0])
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNamesDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newService()
	for _, e := range []string{"b@x.io", "a@x.io"} {
		_, err := s.SignUp(ctx, e, "Name "+e)
		require.NoError(t, err)
	}

	ps, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "a@x.io", ps[0].Email)

	names, err := s.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Name b@x.io", names["b@x.io"])

	require.NoError(t, s.Delete(ctx, "A@x.io"))
	_, err = s.Get(ctx, "a@x.io")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsOf(t *testing.T) {
	p := Profile{Email: "a@x.io", FullName: "A", CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli()}
	st := StatsOf(p)
	assert.Equal(t, "2025-01-02", st.MemberSince)
	assert.Equal(t, "Never", st.LastPlayed)
}
