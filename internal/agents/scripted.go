// Package agents provides Decider implementations. The real reasoning
// machinery (prompting, memory retrieval) lives outside this module;
// Scripted stands in for it during tests and dry runs.
package agents

import (
	"context"
	"sync"

	"storsim/internal/core"
)

// Scripted replays a fixed sequence of decisions per account. Once a
// script is exhausted the agent stays silent, which the scheduler turns
// into no-op turns.
type Scripted struct {
	mu      sync.Mutex
	scripts map[core.AccountID][]string
}

func NewScripted(scripts map[core.AccountID][]string) *Scripted {
	if scripts == nil {
		scripts = map[core.AccountID][]string{}
	}
	return &Scripted{scripts: scripts}
}

func (s *Scripted) Decide(_ context.Context, req core.DecisionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.scripts[req.Account]
	if len(queue) == 0 {
		return "", nil
	}

	decision := queue[0]
	s.scripts[req.Account] = queue[1:]
	return decision, nil
}

// Push appends decisions to an account's script.
func (s *Scripted) Push(account core.AccountID, decisions ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[account] = append(s.scripts[account], decisions...)
}
