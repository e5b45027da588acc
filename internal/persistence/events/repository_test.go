package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storsim/internal/core"
)

func TestFromRecord(t *testing.T) {
	t.Parallel()

	id := core.TootID(7)
	rec := core.EventRecord{
		Seq:       3,
		RunID:     "run-1",
		Episode:   1,
		Round:     2,
		Timestamp: time.Now(),
		Actor:     "alice",
		Action:    &core.Action{Kind: core.ActionReply, Actor: "alice", Body: "hi", ReplyTo: &id},
		Outcome:   core.OutcomeSuccess,
		TootID:    &id,
	}

	row, err := fromRecord(rec)
	require.NoError(t, err)

	require.Equal(t, "run-1", row.RunID)
	require.Equal(t, int64(3), row.Seq)
	require.Equal(t, string(core.ActionReply), row.Kind)
	require.Equal(t, int64(7), *row.TootID)

	var raw core.EventRecord
	require.NoError(t, json.Unmarshal(row.Raw, &raw))
	require.Equal(t, rec.Seq, raw.Seq)
	require.Equal(t, rec.Actor, raw.Actor)
}
