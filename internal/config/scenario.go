package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"storsim/internal/core"
)

// Scenario describes one simulation setup: the population, per-role
// behaviour parameters and the episode shape. Loaded from YAML, fully
// validated before the engine starts.
type Scenario struct {
	Name string `yaml:"name"`

	Agents []ScenarioAgent `yaml:"agents"`
	Roles  map[string]Role `yaml:"roles"`

	Episodes         int `yaml:"episodes"`
	RoundsPerEpisode int `yaml:"rounds_per_episode"`
	MaxTurnTries     int `yaml:"max_turn_tries"`

	// ObservationLimit bounds how many timeline toots an agent sees per
	// observation. Zero means the default of 10.
	ObservationLimit int `yaml:"observation_limit"`
}

type ScenarioAgent struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Role        string `yaml:"role"`
	Bio         string `yaml:"bio"`
	SeedToot    string `yaml:"seed_toot"`

	// Script replaces the external reasoner with a fixed decision
	// sequence, for dry runs and tests.
	Script []string `yaml:"script"`
}

type Role struct {
	// ActivationRate is the probability the agent acts in a round.
	ActivationRate float64 `yaml:"activation_rate"`

	// FollowProb maps a target role to the probability of an initial
	// follow edge toward an agent of that role.
	FollowProb map[string]float64 `yaml:"follow_prob"`
}

func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading scenario: %w", core.ErrConfiguration, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: parsing scenario: %w", core.ErrConfiguration, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) Validate() error {
	if len(s.Agents) == 0 {
		return fmt.Errorf("%w: scenario has no agents", core.ErrConfiguration)
	}
	if s.Episodes <= 0 {
		return fmt.Errorf("%w: episodes must be positive, got %d", core.ErrConfiguration, s.Episodes)
	}
	if s.RoundsPerEpisode <= 0 {
		return fmt.Errorf("%w: rounds_per_episode must be positive, got %d", core.ErrConfiguration, s.RoundsPerEpisode)
	}
	if s.MaxTurnTries <= 0 {
		return fmt.Errorf("%w: max_turn_tries must be positive, got %d", core.ErrConfiguration, s.MaxTurnTries)
	}

	seen := map[string]struct{}{}
	for _, a := range s.Agents {
		if a.Name == "" {
			return fmt.Errorf("%w: agent with empty name", core.ErrConfiguration)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("%w: duplicate agent name %q", core.ErrConfiguration, a.Name)
		}
		seen[a.Name] = struct{}{}

		role, ok := s.Roles[a.Role]
		if !ok {
			return fmt.Errorf("%w: agent %q has unknown role %q", core.ErrConfiguration, a.Name, a.Role)
		}
		if role.ActivationRate < 0 || role.ActivationRate > 1 {
			return fmt.Errorf("%w: role %q activation_rate %f out of [0,1]", core.ErrConfiguration, a.Role, role.ActivationRate)
		}
	}

	for name, role := range s.Roles {
		for target, p := range role.FollowProb {
			if _, ok := s.Roles[target]; !ok {
				return fmt.Errorf("%w: role %q follow_prob references unknown role %q", core.ErrConfiguration, name, target)
			}
			if p < 0 || p > 1 {
				return fmt.Errorf("%w: role %q follow_prob[%q] %f out of [0,1]", core.ErrConfiguration, name, target, p)
			}
		}
	}

	return nil
}

func (s *Scenario) Accounts() []core.Account {
	accounts := make([]core.Account, 0, len(s.Agents))
	for _, a := range s.Agents {
		display := a.DisplayName
		if display == "" {
			display = a.Name
		}
		accounts = append(accounts, core.Account{
			ID:          core.AccountID(a.Name),
			DisplayName: display,
			Bio:         a.Bio,
			Role:        a.Role,
		})
	}
	return accounts
}
