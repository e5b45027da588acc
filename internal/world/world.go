// Package world holds the authoritative in-memory platform state for
// simulated runs: accounts, toots, relationship edges and notification
// queues. All invariants of the platform are enforced here.
package world

import (
	"fmt"
	"regexp"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"storsim/internal/core"
)

type World struct {
	mu sync.Mutex

	accounts map[core.AccountID]*core.Account
	toots    map[core.TootID]*core.Toot
	order    []core.TootID // creation order, oldest first

	favourites map[core.TootID]map[core.AccountID]struct{}
	boosts     map[core.TootID]map[core.AccountID]core.TootID

	notifications map[core.AccountID][]core.Notification

	nextID core.TootID
	now    func() time.Time
}

func New(accounts []core.Account, now func() time.Time) *World {
	if now == nil {
		now = time.Now
	}

	w := &World{
		accounts:      map[core.AccountID]*core.Account{},
		toots:         map[core.TootID]*core.Toot{},
		favourites:    map[core.TootID]map[core.AccountID]struct{}{},
		boosts:        map[core.TootID]map[core.AccountID]core.TootID{},
		notifications: map[core.AccountID][]core.Notification{},
		nextID:        1,
		now:           now,
	}

	for _, a := range accounts {
		acc := a
		if acc.Following == nil {
			acc.Following = map[core.AccountID]struct{}{}
		}
		if acc.Blocking == nil {
			acc.Blocking = map[core.AccountID]struct{}{}
		}
		if acc.Muting == nil {
			acc.Muting = map[core.AccountID]struct{}{}
		}
		w.accounts[acc.ID] = &acc
	}

	return w
}

func (w *World) account(id core.AccountID) (*core.Account, error) {
	acc, ok := w.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: account %q", core.ErrUnknownReference, id)
	}
	return acc, nil
}

func (w *World) toot(id core.TootID) (*core.Toot, error) {
	t, ok := w.toots[id]
	if !ok {
		return nil, fmt.Errorf("%w: toot %d", core.ErrUnknownReference, id)
	}
	return t, nil
}

func (w *World) blocks(a, b core.AccountID) bool {
	acc, ok := w.accounts[a]
	if !ok {
		return false
	}
	_, blocked := acc.Blocking[b]
	return blocked
}

// notify queues a notification for target unless delivery is suppressed
// by a block or mute in the target's direction, or the actor is the
// target itself.
func (w *World) notify(kind core.NotificationKind, actor, target core.AccountID, tootID *core.TootID) {
	if actor == target {
		return
	}
	tgt, ok := w.accounts[target]
	if !ok {
		return
	}
	if _, blocked := tgt.Blocking[actor]; blocked {
		return
	}
	if _, muted := tgt.Muting[actor]; muted {
		return
	}

	w.notifications[target] = append(w.notifications[target], core.Notification{
		Kind:      kind,
		Actor:     actor,
		Target:    target,
		TootID:    tootID,
		CreatedAt: w.now(),
	})
}

// CreateToot creates a post or reply. A reply into a blocked-by
// relationship succeeds but is not delivered to the blocking author.
func (w *World) CreateToot(author core.AccountID, body string, visibility core.Visibility, replyTo *core.TootID, spoiler string) (core.Toot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.account(author); err != nil {
		return core.Toot{}, err
	}
	if body == "" {
		return core.Toot{}, fmt.Errorf("%w: empty body", core.ErrInvalidAction)
	}
	if utf8.RuneCountInString(body) > core.TootCharLimit {
		return core.Toot{}, fmt.Errorf("%w: body exceeds %d characters", core.ErrContentTooLong, core.TootCharLimit)
	}
	if visibility == "" {
		visibility = core.VisibilityPublic
	}
	if !visibility.Valid() {
		return core.Toot{}, fmt.Errorf("%w: unknown visibility %q", core.ErrInvalidAction, visibility)
	}

	var parent *core.Toot
	if replyTo != nil {
		var err error
		parent, err = w.toot(*replyTo)
		if err != nil {
			return core.Toot{}, err
		}
	}

	t := &core.Toot{
		ID:          w.nextID,
		Author:      author,
		Body:        body,
		CreatedAt:   w.now(),
		Visibility:  visibility,
		InReplyTo:   replyTo,
		SpoilerText: spoiler,
	}
	w.nextID++
	w.toots[t.ID] = t
	w.order = append(w.order, t.ID)

	if parent != nil {
		id := t.ID
		w.notify(core.NotificationReply, author, parent.Author, &id)
	}
	for _, mentioned := range w.mentioned(body) {
		if parent != nil && mentioned == parent.Author {
			continue
		}
		id := t.ID
		w.notify(core.NotificationMention, author, mentioned, &id)
	}

	return *t, nil
}

var mentionRe = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

// mentions extracts the @-referenced handles from body. Whole handles
// only: "@bobby" does not reference "bob".
func mentions(body string) map[core.AccountID]struct{} {
	out := map[core.AccountID]struct{}{}
	for _, m := range mentionRe.FindAllStringSubmatch(body, -1) {
		out[core.AccountID(m[1])] = struct{}{}
	}
	return out
}

// mentioned returns the known accounts @-referenced in body, in stable
// order.
func (w *World) mentioned(body string) []core.AccountID {
	var out []core.AccountID
	for id := range mentions(body) {
		if _, ok := w.accounts[id]; ok {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Favourite likes a toot. Idempotent: re-liking is a successful no-op.
func (w *World) Favourite(account core.AccountID, id core.TootID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.account(account); err != nil {
		return err
	}
	t, err := w.toot(id)
	if err != nil {
		return err
	}
	if w.blocks(t.Author, account) {
		return fmt.Errorf("%w: author of toot %d blocks %q", core.ErrPermissionDenied, id, account)
	}

	likers, ok := w.favourites[id]
	if !ok {
		likers = map[core.AccountID]struct{}{}
		w.favourites[id] = likers
	}
	if _, already := likers[account]; already {
		return nil
	}
	likers[account] = struct{}{}
	t.Favourites++

	w.notify(core.NotificationFavourite, account, t.Author, &id)
	return nil
}

// Boost reblogs a toot to the booster's followers, creating a boost
// record toot. Idempotent: re-boosting returns the existing record.
// Follower-only and direct toots cannot be boosted: the record would
// republish them past their audience.
func (w *World) Boost(account core.AccountID, id core.TootID) (core.Toot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.account(account); err != nil {
		return core.Toot{}, err
	}
	t, err := w.toot(id)
	if err != nil {
		return core.Toot{}, err
	}
	if w.blocks(t.Author, account) {
		return core.Toot{}, fmt.Errorf("%w: author of toot %d blocks %q", core.ErrPermissionDenied, id, account)
	}
	if t.Visibility == core.VisibilityPrivate || t.Visibility == core.VisibilityDirect {
		return core.Toot{}, fmt.Errorf("%w: %s toot %d cannot be boosted", core.ErrPermissionDenied, t.Visibility, id)
	}

	boosters, ok := w.boosts[id]
	if !ok {
		boosters = map[core.AccountID]core.TootID{}
		w.boosts[id] = boosters
	}
	if existing, already := boosters[account]; already {
		return *w.toots[existing], nil
	}

	orig := id
	rec := &core.Toot{
		ID:         w.nextID,
		Author:     account,
		Body:       t.Body,
		CreatedAt:  w.now(),
		Visibility: core.VisibilityPublic,
		BoostOf:    &orig,
	}
	w.nextID++
	w.toots[rec.ID] = rec
	w.order = append(w.order, rec.ID)

	boosters[account] = rec.ID
	t.Boosts++

	w.notify(core.NotificationBoost, account, t.Author, &orig)
	return *rec, nil
}

// Follow adds a directed follow edge. Following an account that blocks
// the follower is denied, as is self-follow.
func (w *World) Follow(a, b core.AccountID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if a == b {
		return fmt.Errorf("%w: cannot follow self", core.ErrInvalidAction)
	}
	acc, err := w.account(a)
	if err != nil {
		return err
	}
	if _, err := w.account(b); err != nil {
		return err
	}
	if w.blocks(b, a) {
		return fmt.Errorf("%w: %q blocks %q", core.ErrPermissionDenied, b, a)
	}

	if _, already := acc.Following[b]; already {
		return nil
	}
	acc.Following[b] = struct{}{}
	w.notify(core.NotificationFollow, a, b, nil)
	return nil
}

func (w *World) Unfollow(a, b core.AccountID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	acc, err := w.account(a)
	if err != nil {
		return err
	}
	if _, err := w.account(b); err != nil {
		return err
	}
	delete(acc.Following, b)
	return nil
}

// Block severs the relationship in both directions: existing follow
// edges are removed along with the blocker's pending notifications from
// the blocked account.
func (w *World) Block(a, b core.AccountID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if a == b {
		return fmt.Errorf("%w: cannot block self", core.ErrInvalidAction)
	}
	acc, err := w.account(a)
	if err != nil {
		return err
	}
	other, err := w.account(b)
	if err != nil {
		return err
	}

	acc.Blocking[b] = struct{}{}
	delete(acc.Following, b)
	delete(other.Following, a)

	kept := w.notifications[a][:0]
	for _, n := range w.notifications[a] {
		if n.Actor != b {
			kept = append(kept, n)
		}
	}
	w.notifications[a] = kept
	return nil
}

func (w *World) Unblock(a, b core.AccountID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	acc, err := w.account(a)
	if err != nil {
		return err
	}
	if _, err := w.account(b); err != nil {
		return err
	}
	delete(acc.Blocking, b)
	return nil
}

// Mute suppresses notifications from b to a. Visibility is unaffected.
func (w *World) Mute(a, b core.AccountID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if a == b {
		return fmt.Errorf("%w: cannot mute self", core.ErrInvalidAction)
	}
	acc, err := w.account(a)
	if err != nil {
		return err
	}
	if _, err := w.account(b); err != nil {
		return err
	}
	acc.Muting[b] = struct{}{}
	return nil
}

func (w *World) Unmute(a, b core.AccountID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	acc, err := w.account(a)
	if err != nil {
		return err
	}
	if _, err := w.account(b); err != nil {
		return err
	}
	delete(acc.Muting, b)
	return nil
}

func (w *World) UpdateBio(id core.AccountID, displayName, bio string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	acc, err := w.account(id)
	if err != nil {
		return err
	}
	if utf8.RuneCountInString(bio) > core.TootCharLimit {
		return fmt.Errorf("%w: bio exceeds %d characters", core.ErrContentTooLong, core.TootCharLimit)
	}
	if displayName != "" {
		acc.DisplayName = displayName
	}
	acc.Bio = bio
	return nil
}
