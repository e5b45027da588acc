package eventlog_test

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"storsim/internal/config"
	"storsim/internal/core"
	"storsim/internal/eventlog"
)

func newLog(t *testing.T, path string) *eventlog.Log {
	t.Helper()

	log := &eventlog.Log{
		Logger: slog.Default(),
		Config: &config.Config{EventsPath: path},
	}
	require.NoError(t, log.Init(t.Context()))
	t.Cleanup(func() {
		require.NoError(t, log.Shutdown(t.Context()))
	})
	return log
}

func TestAppend(t *testing.T) {
	t.Parallel()

	t.Run("assigns strictly increasing seqs and a run id", func(t *testing.T) {
		t.Parallel()
		log := newLog(t, "")

		first := log.Append(core.EventRecord{Actor: "alice", Outcome: core.OutcomeSuccess})
		second := log.Append(core.EventRecord{Actor: "bob", Outcome: core.OutcomeNoop})

		require.Equal(t, int64(1), first.Seq)
		require.Equal(t, int64(2), second.Seq)
		require.NotEmpty(t, first.RunID)
		require.Equal(t, first.RunID, second.RunID)
		require.False(t, first.Timestamp.IsZero())
	})

	t.Run("writes one JSONL line per record", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "events.jsonl")
		log := newLog(t, path)

		id := core.TootID(1)
		log.Append(core.EventRecord{
			Actor:   "alice",
			Action:  &core.Action{Kind: core.ActionPost, Actor: "alice", Body: "hi"},
			Outcome: core.OutcomeSuccess,
			TootID:  &id,
		})
		log.Append(core.EventRecord{Actor: "bob", Outcome: core.OutcomeInvalid, Reason: "no recognizable action"})

		file, err := os.Open(path)
		require.NoError(t, err)
		defer file.Close()

		var records []core.EventRecord
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			var rec core.EventRecord
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
			records = append(records, rec)
		}
		require.NoError(t, scanner.Err())

		require.Len(t, records, 2)
		require.Equal(t, core.ActionPost, records[0].Action.Kind)
		require.Equal(t, core.TootID(1), *records[0].TootID)
		require.Equal(t, core.OutcomeInvalid, records[1].Outcome)
		require.Nil(t, records[1].Action)
	})
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	log := newLog(t, "")

	first := log.Subscribe()
	second := log.Subscribe()

	log.Append(core.EventRecord{Actor: "alice", Outcome: core.OutcomeSuccess})
	log.Append(core.EventRecord{Actor: "bob", Outcome: core.OutcomeFailure})

	for _, ch := range []<-chan core.EventRecord{first, second} {
		rec := <-ch
		require.Equal(t, int64(1), rec.Seq)
		rec = <-ch
		require.Equal(t, int64(2), rec.Seq)
	}
}
