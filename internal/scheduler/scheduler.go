// Package scheduler drives the simulation: it owns the episode/round
// loop, the per-turn state machine and the only write path into the
// platform. Exactly one turn is in flight at a time, so event log order
// is execution order.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"storsim/internal/actions"
	"storsim/internal/config"
	"storsim/internal/core"
)

var (
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storsim_turns_total",
		Help: "The total number of agent turns by outcome",
	}, []string{"outcome"})

	turnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "storsim_turn_duration_seconds",
		Help:    "Wall time of one agent turn",
		Buckets: prometheus.DefBuckets,
	})
)

const defaultTurnTimeout = 30 * time.Second

type Scheduler struct {
	Logger   *slog.Logger
	Config   *config.Config
	Scenario *config.Scenario
	Platform core.Platform
	Decider  core.Decider
	Log      core.EventLog

	parser    actions.Parser
	rng       *rand.Rand
	accounts  []core.Account
	knowledge map[core.AccountID]actions.Knowledge
}

func (s *Scheduler) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "scheduler.Scheduler")

	seed := s.Config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	s.rng = rand.New(rand.NewPCG(seed, seed))
	s.Logger.Info("seeded", "seed", seed)

	s.accounts = s.Scenario.Accounts()

	// Agents know each other by name from the start; toots only once
	// observed.
	s.knowledge = map[core.AccountID]actions.Knowledge{}
	for _, account := range s.accounts {
		know := actions.Knowledge{
			Self:     account.ID,
			Toots:    map[core.TootID]struct{}{},
			Accounts: map[core.AccountID]struct{}{},
		}
		for _, other := range s.accounts {
			know.Accounts[other.ID] = struct{}{}
		}
		s.knowledge[account.ID] = know
	}

	return nil
}

func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.setup(ctx); err != nil {
		return err
	}

	for episode := 1; episode <= s.Scenario.Episodes; episode++ {
		for round := 1; round <= s.Scenario.RoundsPerEpisode; round++ {
			if err := s.round(ctx, episode, round); err != nil {
				return err
			}
		}
		s.Logger.Info("episode complete", "episode", episode)
	}

	s.Logger.Info("run complete", "episodes", s.Scenario.Episodes)
	return nil
}

// setup materializes the scenario before episode 1: the initial follow
// graph sampled from the role matrix, then each agent's seed toot.
// Setup events are logged with episode and round zero.
func (s *Scheduler) setup(ctx context.Context) error {
	for _, follower := range s.accounts {
		for _, followee := range s.accounts {
			if follower.ID == followee.ID {
				continue
			}
			p := s.Scenario.Roles[follower.Role].FollowProb[followee.Role]
			if s.rng.Float64() >= p {
				continue
			}

			action := core.Action{
				Kind:          core.ActionFollow,
				Actor:         follower.ID,
				TargetAccount: followee.ID,
			}
			s.execute(ctx, 0, 0, action)
		}
	}

	for _, agent := range s.Scenario.Agents {
		if agent.SeedToot == "" {
			continue
		}
		action := core.Action{
			Kind:       core.ActionPost,
			Actor:      core.AccountID(agent.Name),
			Body:       agent.SeedToot,
			Visibility: core.VisibilityPublic,
		}
		s.execute(ctx, 0, 0, action)
	}

	return ctx.Err()
}

func (s *Scheduler) round(ctx context.Context, episode, round int) error {
	roster := make([]core.Account, len(s.accounts))
	copy(roster, s.accounts)
	s.rng.Shuffle(len(roster), func(i, j int) {
		roster[i], roster[j] = roster[j], roster[i]
	})

	for _, account := range roster {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.rng.Float64() >= s.Scenario.Roles[account.Role].ActivationRate {
			continue
		}
		s.turn(ctx, episode, round, account)
	}
	return nil
}

// turn runs one agent through observe, decide, validate, execute, log.
// Every error is contained here: a failed turn is a logged record, not
// a failed run.
func (s *Scheduler) turn(ctx context.Context, episode, round int, account core.Account) {
	started := time.Now()
	defer func() {
		turnDuration.Observe(time.Since(started).Seconds())
	}()

	obs, err := s.observe(ctx, account.ID)
	if err != nil {
		s.append(core.EventRecord{
			Episode: episode,
			Round:   round,
			Actor:   account.ID,
			Outcome: core.OutcomeFailure,
			Reason:  fmt.Sprintf("observe: %s", err),
		})
		return
	}

	know := s.knowledge[account.ID]
	feedback := ""

	for attempt := 1; attempt <= s.Scenario.MaxTurnTries; attempt++ {
		decision, err := s.decide(ctx, core.DecisionRequest{
			Account:     account.ID,
			DisplayName: account.DisplayName,
			Role:        account.Role,
			Observation: obs,
			Feedback:    feedback,
			Attempt:     attempt,
		})
		if err != nil {
			s.append(core.EventRecord{
				Episode: episode,
				Round:   round,
				Actor:   account.ID,
				Outcome: core.OutcomeFailure,
				Reason:  fmt.Sprintf("decide: %s", err),
			})
			return
		}

		// A silent agent is a valid no-op turn.
		if decision == "" {
			s.append(core.EventRecord{
				Episode: episode,
				Round:   round,
				Actor:   account.ID,
				Outcome: core.OutcomeNoop,
			})
			return
		}

		action, err := s.parser.Parse(decision, know)
		if err != nil {
			feedback = err.Error()
			s.Logger.Debug("invalid decision", "actor", account.ID, "attempt", attempt, "reason", feedback)
			continue
		}

		s.execute(ctx, episode, round, action)
		return
	}

	// Decision budget exhausted, the world stays untouched.
	s.append(core.EventRecord{
		Episode: episode,
		Round:   round,
		Actor:   account.ID,
		Outcome: core.OutcomeInvalid,
		Reason:  feedback,
	})
}

// execute runs one validated action against the platform and logs the
// result. Successful toot IDs enter the actor's known references so it
// may legally refer to its own creations.
func (s *Scheduler) execute(ctx context.Context, episode, round int, action core.Action) {
	execCtx, cancel := context.WithTimeout(ctx, s.turnTimeout())
	defer cancel()

	rec := core.EventRecord{
		Episode: episode,
		Round:   round,
		Actor:   action.Actor,
		Action:  &action,
		Outcome: core.OutcomeSuccess,
	}

	res, err := s.Platform.Execute(execCtx, action)
	if err != nil {
		rec.Outcome = core.OutcomeFailure
		rec.Reason = err.Error()
	} else if res.TootID != nil {
		rec.TootID = res.TootID
		s.learnToot(action.Actor, *res.TootID)
	}

	s.append(rec)
}

func (s *Scheduler) observe(ctx context.Context, account core.AccountID) (core.Observation, error) {
	obsCtx, cancel := context.WithTimeout(ctx, s.turnTimeout())
	defer cancel()

	obs, err := s.Platform.Observe(obsCtx, account)
	if err != nil {
		return core.Observation{}, err
	}

	for _, toot := range obs.Timeline {
		s.learnToot(account, toot.ID)
		if toot.BoostOf != nil {
			s.learnToot(account, *toot.BoostOf)
		}
	}
	for _, n := range obs.Notifications {
		if n.TootID != nil {
			s.learnToot(account, *n.TootID)
		}
	}

	return obs, nil
}

func (s *Scheduler) decide(ctx context.Context, req core.DecisionRequest) (string, error) {
	decideCtx, cancel := context.WithTimeout(ctx, s.turnTimeout())
	defer cancel()

	return s.Decider.Decide(decideCtx, req)
}

func (s *Scheduler) learnToot(account core.AccountID, id core.TootID) {
	s.knowledge[account].Toots[id] = struct{}{}
}

func (s *Scheduler) append(rec core.EventRecord) {
	turnsTotal.WithLabelValues(string(rec.Outcome)).Inc()
	stored := s.Log.Append(rec)
	s.Logger.Debug("turn logged", "seq", stored.Seq, "actor", stored.Actor, "outcome", stored.Outcome)
}

func (s *Scheduler) turnTimeout() time.Duration {
	if s.Config.TurnTimeout > 0 {
		return time.Duration(s.Config.TurnTimeout) * time.Second
	}
	return defaultTurnTimeout
}
