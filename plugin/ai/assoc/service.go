package assoc

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/alterego-app/alterego/store"
)

const (
	maxStrength      = 1e6
	pruneMinIdle     = 120 // days before a weak fact may be pruned by age
	pruneMinSalience = 0.1
)

type service struct {
	store  AssociationStore
	config Config

	// now is swappable in tests.
	now func() time.Time
}

var _ Service = (*service)(nil)

// NewService creates an associative memory service backed by the store.
func NewService(st AssociationStore, config Config) Service {
	if config.HalfLifeDays <= 0 {
		config.HalfLifeDays = DefaultConfig().HalfLifeDays
	}
	if config.MaxPerPersona <= 0 {
		config.MaxPerPersona = DefaultConfig().MaxPerPersona
	}
	if config.FactsCharBudget <= 0 {
		config.FactsCharBudget = DefaultConfig().FactsCharBudget
	}
	return &service{store: st, config: config, now: time.Now}
}

func (s *service) Record(ctx context.Context, persona, text string) error {
	pairs := ParsePairs(text)
	if len(pairs) == 0 {
		return nil
	}

	existing, err := s.byPair(ctx, persona)
	if err != nil {
		return err
	}

	now := s.now().Unix()
	for _, p := range pairs {
		a, ok := existing[p.Left+"\x00"+p.Right]
		if ok {
			a.Strength = math.Min(maxStrength, a.Strength+1)
			a.Exposures++
			a.LastUsedTs = now
			a.LastReinforcedTs = now
		} else {
			a = &store.Association{
				Persona:          persona,
				Left:             p.Left,
				Right:            p.Right,
				Strength:         1,
				Exposures:        1,
				CreatedTs:        now,
				LastUsedTs:       now,
				LastReinforcedTs: now,
			}
			existing[p.Left+"\x00"+p.Right] = a
		}
		if _, err := s.store.UpsertAssociation(ctx, a); err != nil {
			return errors.Wrap(err, "failed to store association")
		}
	}

	return s.prune(ctx, persona)
}

func (s *service) Reinforce(ctx context.Context, persona, text string) error {
	if text == "" {
		return nil
	}
	associations, err := s.store.ListAssociations(ctx, &store.FindAssociation{Persona: &persona})
	if err != nil {
		return errors.Wrap(err, "failed to list associations")
	}
	if len(associations) == 0 {
		return nil
	}

	byRight := map[string]*store.Association{}
	for _, a := range associations {
		if _, ok := byRight[a.Right]; !ok {
			byRight[a.Right] = a
		}
	}

	now := s.now().Unix()
	touched := map[int32]struct{}{}
	for _, tok := range tokenize(text) {
		a, ok := byRight[tok]
		if !ok {
			continue
		}
		if _, done := touched[a.ID]; done {
			continue
		}
		touched[a.ID] = struct{}{}

		a.Strength = math.Min(maxStrength, a.Strength+0.5)
		a.Exposures++
		a.LastUsedTs = now
		a.LastReinforcedTs = now
		if _, err := s.store.UpsertAssociation(ctx, a); err != nil {
			return errors.Wrap(err, "failed to reinforce association")
		}
	}
	return nil
}

func (s *service) FactsLine(ctx context.Context, persona string) (string, error) {
	associations, err := s.store.ListAssociations(ctx, &store.FindAssociation{Persona: &persona})
	if err != nil {
		return "", errors.Wrap(err, "failed to list associations")
	}
	if len(associations) == 0 {
		return "", nil
	}

	now := s.now()
	sort.SliceStable(associations, func(a, b int) bool {
		return s.salience(associations[a], now) > s.salience(associations[b], now)
	})

	const prefix = "Facts: "
	parts := []string{}
	total := len(prefix)
	seen := map[string]struct{}{}
	for _, a := range associations {
		if !validToken(a.Left) || !validToken(a.Right) {
			continue
		}
		if _, dup := seen[a.Right]; dup {
			continue
		}

		frag := a.Left + "=" + a.Right
		add := len(frag)
		if len(parts) > 0 {
			add += len("; ")
		}
		if total+add > s.config.FactsCharBudget {
			break
		}
		parts = append(parts, frag)
		total += add
		seen[a.Right] = struct{}{}
	}

	if len(parts) == 0 {
		return "", nil
	}
	return prefix + strings.Join(parts, "; "), nil
}

func (s *service) byPair(ctx context.Context, persona string) (map[string]*store.Association, error) {
	associations, err := s.store.ListAssociations(ctx, &store.FindAssociation{Persona: &persona})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list associations")
	}
	existing := make(map[string]*store.Association, len(associations))
	for _, a := range associations {
		existing[a.Left+"\x00"+a.Right] = a
	}
	return existing, nil
}

func (s *service) Clear(ctx context.Context, persona string) error {
	if err := s.store.DeleteAssociation(ctx, &store.DeleteAssociation{Persona: &persona}); err != nil {
		return errors.Wrap(err, "failed to clear associations")
	}
	return nil
}

// salience weighs a fact by decayed strength, a short recency boost, and
// diminishing returns on repeat exposures.
func (s *service) salience(a *store.Association, now time.Time) float64 {
	reinforced := a.LastReinforcedTs
	if reinforced == 0 {
		reinforced = a.LastUsedTs
	}
	if reinforced == 0 {
		reinforced = a.CreatedTs
	}
	k := math.Ln2 / float64(s.config.HalfLifeDays)
	decayed := a.Strength * math.Exp(-k*daysSince(reinforced, now))

	used := a.LastUsedTs
	if used == 0 {
		used = a.CreatedTs
	}
	boost := 1 + math.Exp(-daysSince(used, now)/3)*0.5

	exposures := a.Exposures
	if exposures < 1 {
		exposures = 1
	}
	return decayed * boost * math.Pow(float64(exposures), 0.25)
}

// prune drops the weakest facts once the persona is over the cap, but only
// those that are genuinely stale.
func (s *service) prune(ctx context.Context, persona string) error {
	associations, err := s.store.ListAssociations(ctx, &store.FindAssociation{Persona: &persona})
	if err != nil {
		return errors.Wrap(err, "failed to list associations")
	}
	if len(associations) <= s.config.MaxPerPersona {
		return nil
	}

	now := s.now()
	sort.SliceStable(associations, func(a, b int) bool {
		return s.salience(associations[a], now) < s.salience(associations[b], now)
	})

	over := len(associations) - s.config.MaxPerPersona
	for _, a := range associations[:over] {
		if s.salience(a, now) >= pruneMinSalience && daysSince(a.CreatedTs, now) <= pruneMinIdle {
			continue
		}
		id := a.ID
		if err := s.store.DeleteAssociation(ctx, &store.DeleteAssociation{ID: &id}); err != nil {
			return errors.Wrap(err, "failed to prune association")
		}
	}
	return nil
}

func daysSince(ts int64, now time.Time) float64 {
	if ts <= 0 {
		return 1e6
	}
	days := now.Sub(time.Unix(ts, 0)).Hours() / 24
	if days < 0 {
		return 0
	}
	return days
}
