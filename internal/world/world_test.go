package world_test

import (
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"storsim/internal/core"
	"storsim/internal/world"
)

func newWorld(t *testing.T, names ...core.AccountID) *world.World {
	t.Helper()

	accounts := lo.Map(names, func(name core.AccountID, _ int) core.Account {
		return core.Account{ID: name, DisplayName: string(name)}
	})

	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return world.New(accounts, func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
}

func TestCreateToot(t *testing.T) {
	t.Parallel()

	t.Run("assigns strictly increasing unique ids", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		first, err := w.CreateToot("alice", "one", core.VisibilityPublic, nil, "")
		require.NoError(t, err)
		second, err := w.CreateToot("bob", "two", core.VisibilityPublic, nil, "")
		require.NoError(t, err)
		third, err := w.CreateToot("alice", "three", core.VisibilityPublic, nil, "")
		require.NoError(t, err)

		require.Less(t, first.ID, second.ID)
		require.Less(t, second.ID, third.ID)
	})

	t.Run("round-trips the body exactly", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice")

		body := "Hello Storhampton! 🎉"
		toot, err := w.CreateToot("alice", body, core.VisibilityPublic, nil, "")
		require.NoError(t, err)

		timeline, err := w.Timeline("alice", world.FilterHome, 10)
		require.NoError(t, err)
		require.Len(t, timeline, 1)
		require.Equal(t, body, timeline[0].Body)
		require.Equal(t, toot.ID, timeline[0].ID)
	})

	t.Run("rejects an over-long body", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice")

		long := strings.Repeat("ü", 501)
		_, err := w.CreateToot("alice", long, core.VisibilityPublic, nil, "")
		require.ErrorIs(t, err, core.ErrContentTooLong)
	})

	t.Run("accepts exactly 500 runes", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice")

		body := strings.Repeat("ü", 500)
		_, err := w.CreateToot("alice", body, core.VisibilityPublic, nil, "")
		require.NoError(t, err)
	})

	t.Run("rejects an unknown author", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice")

		_, err := w.CreateToot("mallory", "hi", core.VisibilityPublic, nil, "")
		require.ErrorIs(t, err, core.ErrUnknownReference)
	})

	t.Run("reply to unknown toot fails and creates nothing", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice")

		missing := core.TootID(99)
		_, err := w.CreateToot("alice", "hi", core.VisibilityPublic, &missing, "")
		require.ErrorIs(t, err, core.ErrUnknownReference)

		timeline, err := w.Timeline("alice", world.FilterPublic, 10)
		require.NoError(t, err)
		require.Empty(t, timeline)
	})
}

func TestReplyNotifications(t *testing.T) {
	t.Parallel()

	t.Run("reply notifies the parent author", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		parent, err := w.CreateToot("bob", "question?", core.VisibilityPublic, nil, "")
		require.NoError(t, err)

		reply, err := w.CreateToot("alice", "answer!", core.VisibilityPublic, &parent.ID, "")
		require.NoError(t, err)

		notifications, err := w.Notifications("bob", false, 10)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		require.Equal(t, core.NotificationReply, notifications[0].Kind)
		require.Equal(t, core.AccountID("alice"), notifications[0].Actor)
		require.Equal(t, reply.ID, *notifications[0].TootID)
	})

	t.Run("mentions notify the named accounts once", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob", "carol")

		parent, err := w.CreateToot("bob", "question?", core.VisibilityPublic, nil, "")
		require.NoError(t, err)

		_, err = w.CreateToot("alice", "@bob @carol what do you two think?", core.VisibilityPublic, &parent.ID, "")
		require.NoError(t, err)

		// bob already gets the reply notification, not a second mention.
		notifications, err := w.Notifications("bob", false, 10)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		require.Equal(t, core.NotificationReply, notifications[0].Kind)

		notifications, err = w.Notifications("carol", false, 10)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		require.Equal(t, core.NotificationMention, notifications[0].Kind)
	})

	t.Run("a longer handle is not a mention of its prefix", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		_, err := w.CreateToot("alice", "@bobby around?", core.VisibilityPublic, nil, "")
		require.NoError(t, err)

		notifications, err := w.Notifications("bob", false, 10)
		require.NoError(t, err)
		require.Empty(t, notifications)
	})

	t.Run("reply to a blocking author succeeds but is not delivered", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		parent, err := w.CreateToot("bob", "question?", core.VisibilityPublic, nil, "")
		require.NoError(t, err)
		require.NoError(t, w.Block("bob", "alice"))

		_, err = w.CreateToot("alice", "answer!", core.VisibilityPublic, &parent.ID, "")
		require.NoError(t, err)

		notifications, err := w.Notifications("bob", false, 10)
		require.NoError(t, err)
		require.Empty(t, notifications)
	})

	t.Run("fetch with clear empties the queue", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		parent, err := w.CreateToot("bob", "question?", core.VisibilityPublic, nil, "")
		require.NoError(t, err)
		_, err = w.CreateToot("alice", "answer!", core.VisibilityPublic, &parent.ID, "")
		require.NoError(t, err)

		notifications, err := w.Notifications("bob", true, 10)
		require.NoError(t, err)
		require.Len(t, notifications, 1)

		notifications, err = w.Notifications("bob", false, 10)
		require.NoError(t, err)
		require.Empty(t, notifications)
	})
}

func TestFavourite(t *testing.T) {
	t.Parallel()

	t.Run("re-like is a successful no-op", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		toot, err := w.CreateToot("bob", "hi", core.VisibilityPublic, nil, "")
		require.NoError(t, err)

		require.NoError(t, w.Favourite("alice", toot.ID))
		require.NoError(t, w.Favourite("alice", toot.ID))

		timeline, err := w.Timeline("bob", world.FilterPublic, 10)
		require.NoError(t, err)
		require.Equal(t, 1, timeline[0].Favourites)
	})

	t.Run("unknown toot", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice")

		require.ErrorIs(t, w.Favourite("alice", 42), core.ErrUnknownReference)
	})

	t.Run("denied when the author blocks the liker", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		toot, err := w.CreateToot("bob", "hi", core.VisibilityPublic, nil, "")
		require.NoError(t, err)
		require.NoError(t, w.Block("bob", "alice"))

		require.ErrorIs(t, w.Favourite("alice", toot.ID), core.ErrPermissionDenied)
	})
}

func TestBoost(t *testing.T) {
	t.Parallel()

	t.Run("creates a boost record and counts once", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		orig, err := w.CreateToot("bob", "hi", core.VisibilityPublic, nil, "")
		require.NoError(t, err)

		rec, err := w.Boost("alice", orig.ID)
		require.NoError(t, err)
		require.Equal(t, orig.ID, *rec.BoostOf)
		require.Greater(t, rec.ID, orig.ID)

		again, err := w.Boost("alice", orig.ID)
		require.NoError(t, err)
		require.Equal(t, rec.ID, again.ID)

		timeline, err := w.UserTimeline("bob", "bob", 10)
		require.NoError(t, err)
		require.Equal(t, 1, timeline[0].Boosts)
	})

	t.Run("denied when the author blocks the booster", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		orig, err := w.CreateToot("bob", "hi", core.VisibilityPublic, nil, "")
		require.NoError(t, err)
		require.NoError(t, w.Block("bob", "alice"))

		_, err = w.Boost("alice", orig.ID)
		require.ErrorIs(t, err, core.ErrPermissionDenied)
	})

	t.Run("direct and follower-only toots cannot be boosted", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob", "carol")

		secret, err := w.CreateToot("alice", "psst @bob our secret", core.VisibilityDirect, nil, "")
		require.NoError(t, err)

		_, err = w.Boost("bob", secret.ID)
		require.ErrorIs(t, err, core.ErrPermissionDenied)

		private, err := w.CreateToot("alice", "for followers", core.VisibilityPrivate, nil, "")
		require.NoError(t, err)
		require.NoError(t, w.Follow("bob", "alice"))

		_, err = w.Boost("bob", private.ID)
		require.ErrorIs(t, err, core.ErrPermissionDenied)

		carolSees, err := w.Timeline("carol", world.FilterPublic, 10)
		require.NoError(t, err)
		require.Empty(t, carolSees)
	})
}

func TestBlock(t *testing.T) {
	t.Parallel()

	t.Run("hides the blocker's toots from the blocked", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		require.NoError(t, w.Follow("alice", "bob"))
		_, err := w.CreateToot("bob", "hi", core.VisibilityPublic, nil, "")
		require.NoError(t, err)
		require.NoError(t, w.Block("bob", "alice"))

		timeline, err := w.Timeline("alice", world.FilterPublic, 10)
		require.NoError(t, err)
		require.Empty(t, timeline)
	})

	t.Run("severs follow edges both ways", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		require.NoError(t, w.Follow("alice", "bob"))
		require.NoError(t, w.Follow("bob", "alice"))
		require.NoError(t, w.Block("bob", "alice"))

		_, err := w.CreateToot("bob", "hi", core.VisibilityPublic, nil, "")
		require.NoError(t, err)
		_, err = w.CreateToot("alice", "hello", core.VisibilityPublic, nil, "")
		require.NoError(t, err)

		home, err := w.Timeline("bob", world.FilterHome, 10)
		require.NoError(t, err)
		require.Len(t, home, 1)
		require.Equal(t, core.AccountID("bob"), home[0].Author)
	})

	t.Run("follow toward the blocker is denied", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		require.NoError(t, w.Block("bob", "alice"))
		require.ErrorIs(t, w.Follow("alice", "bob"), core.ErrPermissionDenied)
	})

	t.Run("hides the profile in either direction", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		require.NoError(t, w.Block("bob", "alice"))

		_, err := w.Profile("alice", "bob")
		require.ErrorIs(t, err, core.ErrPermissionDenied)
		_, err = w.Profile("bob", "alice")
		require.ErrorIs(t, err, core.ErrPermissionDenied)
	})

	t.Run("unblock restores visibility but not follows", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		require.NoError(t, w.Follow("alice", "bob"))
		require.NoError(t, w.Block("bob", "alice"))
		require.NoError(t, w.Unblock("bob", "alice"))

		_, err := w.CreateToot("bob", "hi", core.VisibilityPublic, nil, "")
		require.NoError(t, err)

		public, err := w.Timeline("alice", world.FilterPublic, 10)
		require.NoError(t, err)
		require.Len(t, public, 1)

		home, err := w.Timeline("alice", world.FilterHome, 10)
		require.NoError(t, err)
		require.Empty(t, home)
	})
}

func TestMute(t *testing.T) {
	t.Parallel()

	t.Run("suppresses notifications but not visibility", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		parent, err := w.CreateToot("bob", "question?", core.VisibilityPublic, nil, "")
		require.NoError(t, err)
		require.NoError(t, w.Mute("bob", "alice"))

		_, err = w.CreateToot("alice", "answer!", core.VisibilityPublic, &parent.ID, "")
		require.NoError(t, err)

		notifications, err := w.Notifications("bob", false, 10)
		require.NoError(t, err)
		require.Empty(t, notifications)

		timeline, err := w.Timeline("bob", world.FilterPublic, 10)
		require.NoError(t, err)
		require.Len(t, timeline, 2)
	})
}

func TestVisibility(t *testing.T) {
	t.Parallel()

	t.Run("follower-only toots hidden from non-followers", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob", "carol")

		require.NoError(t, w.Follow("bob", "alice"))
		_, err := w.CreateToot("alice", "for followers", core.VisibilityPrivate, nil, "")
		require.NoError(t, err)

		bobSees, err := w.Timeline("bob", world.FilterPublic, 10)
		require.NoError(t, err)
		require.Len(t, bobSees, 1)

		carolSees, err := w.Timeline("carol", world.FilterPublic, 10)
		require.NoError(t, err)
		require.Empty(t, carolSees)
	})

	t.Run("direct toots visible only to participants", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob", "carol")

		_, err := w.CreateToot("alice", "psst @bob", core.VisibilityDirect, nil, "")
		require.NoError(t, err)

		bobSees, err := w.Timeline("bob", world.FilterPublic, 10)
		require.NoError(t, err)
		require.Len(t, bobSees, 1)

		carolSees, err := w.Timeline("carol", world.FilterPublic, 10)
		require.NoError(t, err)
		require.Empty(t, carolSees)
	})

	t.Run("direct toot naming a longer handle stays hidden from its prefix", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob")

		_, err := w.CreateToot("alice", "psst @bobby", core.VisibilityDirect, nil, "")
		require.NoError(t, err)

		bobSees, err := w.Timeline("bob", world.FilterPublic, 10)
		require.NoError(t, err)
		require.Empty(t, bobSees)
	})

	t.Run("home timeline is follows only, newest first", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, "alice", "bob", "carol")

		require.NoError(t, w.Follow("alice", "bob"))
		_, err := w.CreateToot("bob", "first", core.VisibilityPublic, nil, "")
		require.NoError(t, err)
		_, err = w.CreateToot("carol", "unrelated", core.VisibilityPublic, nil, "")
		require.NoError(t, err)
		_, err = w.CreateToot("bob", "second", core.VisibilityPublic, nil, "")
		require.NoError(t, err)

		home, err := w.Timeline("alice", world.FilterHome, 10)
		require.NoError(t, err)
		require.Len(t, home, 2)
		require.Equal(t, "second", home[0].Body)
		require.Equal(t, "first", home[1].Body)
	})
}

func TestUpdateBio(t *testing.T) {
	t.Parallel()

	w := newWorld(t, "alice", "bob")

	require.NoError(t, w.UpdateBio("alice", "", "Gardener and teacher."))

	profile, err := w.Profile("bob", "alice")
	require.NoError(t, err)
	require.Equal(t, "Gardener and teacher.", profile.Bio)
}
