package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"storsim/internal/config"
	"storsim/internal/core"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validScenario = `
name: test
episodes: 1
rounds_per_episode: 2
max_turn_tries: 3
roles:
  citizen:
    activation_rate: 0.5
    follow_prob:
      citizen: 0.3
agents:
  - name: alice
    role: citizen
    seed_toot: "hi"
    script:
      - alice posts "hello"
  - name: bob
    role: citizen
`

func TestLoadScenario(t *testing.T) {
	t.Parallel()

	t.Run("valid scenario", func(t *testing.T) {
		t.Parallel()

		scenario, err := config.LoadScenario(writeScenario(t, validScenario))
		require.NoError(t, err)
		require.Equal(t, "test", scenario.Name)
		require.Len(t, scenario.Agents, 2)
		require.Equal(t, []string{`alice posts "hello"`}, scenario.Agents[0].Script)
		require.Equal(t, 0.5, scenario.Roles["citizen"].ActivationRate)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := config.LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, core.ErrConfiguration)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := config.LoadScenario(writeScenario(t, "agents: [unclosed"))
		require.ErrorIs(t, err, core.ErrConfiguration)
	})
}

func TestScenarioValidate(t *testing.T) {
	t.Parallel()

	base := func() *config.Scenario {
		return &config.Scenario{
			Name: "test",
			Agents: []config.ScenarioAgent{
				{Name: "alice", Role: "citizen"},
			},
			Roles: map[string]config.Role{
				"citizen": {ActivationRate: 0.5},
			},
			Episodes:         1,
			RoundsPerEpisode: 1,
			MaxTurnTries:     1,
		}
	}

	t.Run("no agents", func(t *testing.T) {
		t.Parallel()

		s := base()
		s.Agents = nil
		require.ErrorIs(t, s.Validate(), core.ErrConfiguration)
	})

	t.Run("zero episodes", func(t *testing.T) {
		t.Parallel()

		s := base()
		s.Episodes = 0
		require.ErrorIs(t, s.Validate(), core.ErrConfiguration)
	})

	t.Run("duplicate agent names", func(t *testing.T) {
		t.Parallel()

		s := base()
		s.Agents = append(s.Agents, config.ScenarioAgent{Name: "alice", Role: "citizen"})
		require.ErrorIs(t, s.Validate(), core.ErrConfiguration)
	})

	t.Run("unknown role", func(t *testing.T) {
		t.Parallel()

		s := base()
		s.Agents[0].Role = "mayor"
		require.ErrorIs(t, s.Validate(), core.ErrConfiguration)
	})

	t.Run("activation rate out of range", func(t *testing.T) {
		t.Parallel()

		s := base()
		s.Roles["citizen"] = config.Role{ActivationRate: 1.5}
		require.ErrorIs(t, s.Validate(), core.ErrConfiguration)
	})

	t.Run("follow matrix references unknown role", func(t *testing.T) {
		t.Parallel()

		s := base()
		s.Roles["citizen"] = config.Role{
			ActivationRate: 0.5,
			FollowProb:     map[string]float64{"mayor": 0.1},
		}
		require.ErrorIs(t, s.Validate(), core.ErrConfiguration)
	})
}

func TestLoadTokens(t *testing.T) {
	t.Parallel()

	t.Run("valid tokens", func(t *testing.T) {
		t.Parallel()

		path := writeScenario(t, "alice: token-a\nbob: token-b\n")
		tokens, err := config.LoadTokens(path)
		require.NoError(t, err)
		require.Equal(t, "token-a", tokens["alice"])
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		path := writeScenario(t, "")
		_, err := config.LoadTokens(path)
		require.ErrorIs(t, err, core.ErrConfiguration)
	})
}
