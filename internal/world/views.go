package world

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"storsim/internal/core"
)

type TimelineFilter string

const (
	// FilterHome shows the viewer's own toots plus those of accounts
	// they follow.
	FilterHome TimelineFilter = "home"
	// FilterPublic shows every public and unlisted toot.
	FilterPublic TimelineFilter = "public"
)

// Timeline recomputes the viewer's timeline from current state: newest
// first, at most limit entries. Toots from accounts that block the
// viewer are never included, follower-only toots are visible only to
// followers, direct toots only to the participants.
func (w *World) Timeline(viewer core.AccountID, filter TimelineFilter, limit int) ([]core.Toot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	acc, err := w.account(viewer)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	var out []core.Toot
	for i := len(w.order) - 1; i >= 0 && len(out) < limit; i-- {
		t := w.toots[w.order[i]]
		if !w.visibleTo(acc, t) {
			continue
		}
		if filter == FilterHome && t.Author != viewer {
			if _, follows := acc.Following[t.Author]; !follows {
				continue
			}
		}
		out = append(out, *t)
	}
	return out, nil
}

// UserTimeline returns target's own toots as seen by viewer.
func (w *World) UserTimeline(viewer, target core.AccountID, limit int) ([]core.Toot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	acc, err := w.account(viewer)
	if err != nil {
		return nil, err
	}
	if _, err := w.account(target); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	var out []core.Toot
	for i := len(w.order) - 1; i >= 0 && len(out) < limit; i-- {
		t := w.toots[w.order[i]]
		if t.Author != target || !w.visibleTo(acc, t) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (w *World) visibleTo(viewer *core.Account, t *core.Toot) bool {
	if t.Author == viewer.ID {
		return true
	}
	if w.blocks(t.Author, viewer.ID) {
		return false
	}

	switch t.Visibility {
	case core.VisibilityPublic, core.VisibilityUnlisted:
		return true
	case core.VisibilityPrivate:
		_, follows := viewer.Following[t.Author]
		return follows
	case core.VisibilityDirect:
		if t.InReplyTo != nil {
			if parent, ok := w.toots[*t.InReplyTo]; ok && parent.Author == viewer.ID {
				return true
			}
		}
		_, participant := mentions(t.Body)[viewer.ID]
		return participant
	}
	return false
}

// Notifications returns the account's queued notifications, newest
// first. With clear, the queue is emptied after the fetch.
func (w *World) Notifications(account core.AccountID, clear bool, limit int) ([]core.Notification, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.account(account); err != nil {
		return nil, err
	}

	queue := w.notifications[account]
	out := make([]core.Notification, len(queue))
	for i, n := range queue {
		out[len(queue)-1-i] = n
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if clear {
		w.notifications[account] = nil
	}
	return out, nil
}

// Profile returns target's account card. A block in either direction
// hides the profile.
func (w *World) Profile(viewer, target core.AccountID) (core.Account, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.account(viewer); err != nil {
		return core.Account{}, err
	}
	tgt, err := w.account(target)
	if err != nil {
		return core.Account{}, err
	}
	if w.blocks(target, viewer) || w.blocks(viewer, target) {
		return core.Account{}, fmt.Errorf("%w: profile of %q is not visible to %q", core.ErrPermissionDenied, target, viewer)
	}
	return core.Account{
		ID:          tgt.ID,
		DisplayName: tgt.DisplayName,
		Bio:         tgt.Bio,
		Role:        tgt.Role,
	}, nil
}

// AccountIDs lists all account handles, stable order.
func (w *World) AccountIDs() []core.AccountID {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := lo.Keys(w.accounts)
	slices.Sort(ids)
	return ids
}
