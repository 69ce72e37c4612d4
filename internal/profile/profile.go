// apps/versus-server/internal/profile/profile.go
//
// Player profiles, keyed by normalized email.
// Responsibilities:
//   - Sign-up/login validation (email format, name length).
//   - Game counters and the three best won games (attempts, then time).
//   - Persistence in the KV store under profile:<email>.

package profile

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
)

const (
	keyPrefix    = "profile:"
	maxBestGames = 3
	minNameLen   = 2
)

var (
	ErrInvalidEmail = errors.New("please enter a valid email address")
	ErrInvalidName  = errors.New("name must be at least 2 characters")
	ErrEmailTaken   = errors.New("email already registered")
	ErrNotFound     = errors.New("profile not found")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// BestGame is one of a player's top won games.
type BestGame struct {
	Word      string `json:"word"`
	Attempts  int    `json:"attempts"`
	TimeTaken int    `json:"timeTaken"`
	Timestamp int64  `json:"timestamp"`
}

// Profile is a registered player.
type Profile struct {
	Email            string     `json:"email"`
	FullName         string     `json:"fullName"`
	CreatedAt        int64      `json:"createdAt"`    // unix ms
	LastPlayedAt     int64      `json:"lastPlayedAt"` // unix ms
	TotalGamesPlayed int        `json:"totalGamesPlayed"`
	BestGames        []BestGame `json:"bestGames"`
}

// NormalizeEmail lower-cases and trims.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// ValidEmail reports whether email looks like an address.
func ValidEmail(email string) bool { return emailRe.MatchString(strings.TrimSpace(email)) }

// ValidName requires at least two non-space characters after trimming.
func ValidName(name string) bool { return len([]rune(strings.TrimSpace(name))) >= minNameLen }

// Service manages profiles in a KV store.
type Service struct {
	kv    store.KV
	clock game.Clock
	mu    sync.Mutex // serializes read-modify-write
}

// NewService builds a Service. A nil clock means time.Now.
func NewService(kv store.KV, clock game.Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{kv: kv, clock: clock}
}

func key(email string) string { return keyPrefix + email }

// SignUp registers a new player.
func (s *Service) SignUp(ctx context.Context, email, fullName string) (Profile, error) {
	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		return Profile{}, ErrInvalidEmail
	}
	if !ValidName(fullName) {
		return Profile{}, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(ctx, email); err == nil {
		return Profile{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return Profile{}, err
	}
	now := s.clock().UnixMilli()
	p := Profile{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		CreatedAt:    now,
		LastPlayedAt: now,
		BestGames:    []BestGame{},
	}
	return p, s.put(ctx, p)
}

// Login looks up an existing player and touches lastPlayedAt.
func (s *Service) Login(ctx context.Context, email string) (Profile, error) {
	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		return Profile{}, ErrInvalidEmail
	}
	return s.update(ctx, email, func(p *Profile) {
		p.LastPlayedAt = s.clock().UnixMilli()
	})
}

// Get returns the profile for email or ErrNotFound.
func (s *Service) Get(ctx context.Context, email string) (Profile, error) {
	return s.get(ctx, NormalizeEmail(email))
}

// RecordGame counts a finished game; won games compete for BestGames.
func (s *Service) RecordGame(ctx context.Context, email string, r game.Result) (Profile, error) {
	return s.update(ctx, NormalizeEmail(email), func(p *Profile) {
		now := s.clock().UnixMilli()
		p.TotalGamesPlayed++
		p.LastPlayedAt = now
		if !r.Won() {
			return
		}
		p.BestGames = append(p.BestGames, BestGame{
			Word: r.Word, Attempts: r.Attempts, TimeTaken: r.TimeTaken, Timestamp: now,
		})
		sort.SliceStable(p.BestGames, func(i, j int) bool {
			a, b := p.BestGames[i], p.BestGames[j]
			if a.Attempts != b.Attempts {
				return a.Attempts < b.Attempts
			}
			return a.TimeTaken < b.TimeTaken
		})
		if len(p.BestGames) > maxBestGames {
			p.BestGames = p.BestGames[:maxBestGames]
		}
	})
}

// Delete removes the profile. Missing profiles are not an error.
func (s *Service) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(ctx, key(NormalizeEmail(email)))
}

// List returns all profiles ordered by email.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	keys, err := s.kv.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("profile: list: %w", err)
	}
	out := make([]Profile, 0, len(keys))
	for _, k := range keys {
		p, err := s.get(ctx, strings.TrimPrefix(k, keyPrefix))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Names maps email → full name for leaderboard display.
func (s *Service) Names(ctx context.Context) (map[string]string, error) {
	ps, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.SliceToMap(ps, func(p Profile) (string, string) { return p.Email, p.FullName }), nil
}

// Stats is the profile summary shown to the player.
type Stats struct {
	FullName         string     `json:"fullName"`
	Email            string     `json:"email"`
	TotalGamesPlayed int        `json:"totalGamesPlayed"`
	BestGames        []BestGame `json:"bestGames"`
	MemberSince      string     `json:"memberSince"` // YYYY-MM-DD
	LastPlayed       string     `json:"lastPlayed"`  // YYYY-MM-DD or "Never"
}

// StatsOf formats p for display.
func StatsOf(p Profile) Stats {
	st := Stats{
		FullName:         p.FullName,
		Email:            p.Email,
		TotalGamesPlayed: p.TotalGamesPlayed,
		BestGames:        p.BestGames,
		MemberSince:      time.UnixMilli(p.CreatedAt).UTC().Format(time.DateOnly),
		LastPlayed:       "Never",
	}
	if p.LastPlayedAt > 0 {
		st.LastPlayed = time.UnixMilli(p.LastPlayedAt).UTC().Format(time.DateOnly)
	}
	return st
}

func (s *Service) update(ctx context.Context, email string, fn func(*Profile)) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.get(ctx, email)
	if err != nil {
		return Profile{}, err
	}
	fn(&p)
	return p, s.put(ctx, p)
}

func (s *Service) get(ctx context.Context, email string) (Profile, error) {
	var p Profile
	found, err := store.LoadJSON(ctx, s.kv, key(email), &p)
	if err != nil {
		return Profile{}, err
	}
	if !found {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) put(ctx context.Context, p Profile) error {
	if err := store.SaveJSON(ctx, s.kv, key(p.Email), p); err != nil {
		return fmt.Errorf("profile: save %s: %w", p.Email, err)
	}
	return nil
}
