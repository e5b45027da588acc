// Package platform executes validated actions against a backend. The
// simulated backend drives the in-memory world model, the connected
// backend a live Mastodon-compatible server. Both honor the same
// contract, so the scheduler never knows which one it holds.
package platform

import (
	"context"
	"fmt"

	"storsim/internal/core"
	"storsim/internal/world"
)

type Simulated struct {
	world *world.World

	observationLimit int
}

func NewSimulated(w *world.World, observationLimit int) *Simulated {
	if observationLimit <= 0 {
		observationLimit = 10
	}
	return &Simulated{world: w, observationLimit: observationLimit}
}

func (s *Simulated) Execute(_ context.Context, action core.Action) (core.ActionResult, error) {
	if err := action.Validate(); err != nil {
		return core.ActionResult{}, err
	}

	switch action.Kind {
	case core.ActionPost:
		t, err := s.world.CreateToot(action.Actor, action.Body, action.Visibility, nil, action.SpoilerText)
		if err != nil {
			return core.ActionResult{}, err
		}
		id := t.ID
		return core.ActionResult{TootID: &id}, nil

	case core.ActionReply:
		t, err := s.world.CreateToot(action.Actor, action.Body, action.Visibility, action.ReplyTo, action.SpoilerText)
		if err != nil {
			return core.ActionResult{}, err
		}
		id := t.ID
		return core.ActionResult{TootID: &id}, nil

	case core.ActionBoost:
		t, err := s.world.Boost(action.Actor, *action.TootID)
		if err != nil {
			return core.ActionResult{}, err
		}
		id := t.ID
		return core.ActionResult{TootID: &id}, nil

	case core.ActionLike:
		return core.ActionResult{}, s.world.Favourite(action.Actor, *action.TootID)

	case core.ActionFollow:
		return core.ActionResult{}, s.world.Follow(action.Actor, action.TargetAccount)
	case core.ActionUnfollow:
		return core.ActionResult{}, s.world.Unfollow(action.Actor, action.TargetAccount)
	case core.ActionBlock:
		return core.ActionResult{}, s.world.Block(action.Actor, action.TargetAccount)
	case core.ActionUnblock:
		return core.ActionResult{}, s.world.Unblock(action.Actor, action.TargetAccount)
	case core.ActionMute:
		return core.ActionResult{}, s.world.Mute(action.Actor, action.TargetAccount)
	case core.ActionUnmute:
		return core.ActionResult{}, s.world.Unmute(action.Actor, action.TargetAccount)

	case core.ActionUpdateBio:
		return core.ActionResult{}, s.world.UpdateBio(action.Actor, "", action.Body)
	}

	return core.ActionResult{}, fmt.Errorf("%w: unhandled action kind %q", core.ErrInvalidAction, action.Kind)
}

// Observe gathers the agent's pending notifications (clearing them) and
// a slice of its home timeline. Strictly read-only on platform content.
func (s *Simulated) Observe(_ context.Context, account core.AccountID) (core.Observation, error) {
	notifications, err := s.world.Notifications(account, true, s.observationLimit)
	if err != nil {
		return core.Observation{}, err
	}

	timeline, err := s.world.Timeline(account, world.FilterHome, s.observationLimit)
	if err != nil {
		return core.Observation{}, err
	}

	return core.Observation{
		Account:       account,
		Timeline:      timeline,
		Notifications: notifications,
	}, nil
}
