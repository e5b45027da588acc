package platform

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"storsim/internal/core"
	"storsim/pkg/async"
	"storsim/pkg/masto"
	"storsim/pkg/retry"
)

// Connected translates structured actions into Mastodon REST calls.
// Transient failures (network, 429, 5xx) are retried with bounded
// exponential backoff; exhaustion surfaces as ErrTransientBackend and
// the turn is reported failed, never fatal to the episode.
type Connected struct {
	client *masto.Client
	tokens map[core.AccountID]string

	policy           retry.Policy
	observationLimit int

	mu        sync.Mutex
	remoteIDs map[core.TootID]string
	localIDs  map[string]core.TootID
	accounts  map[core.AccountID]string
	nextLocal core.TootID
}

func NewConnected(client *masto.Client, tokens map[core.AccountID]string, policy retry.Policy, observationLimit int) *Connected {
	if observationLimit <= 0 {
		observationLimit = 10
	}
	return &Connected{
		client:           client,
		tokens:           tokens,
		policy:           policy,
		observationLimit: observationLimit,
		remoteIDs:        map[core.TootID]string{},
		localIDs:         map[string]core.TootID{},
		accounts:         map[core.AccountID]string{},
		nextLocal:        1,
	}
}

func (c *Connected) token(account core.AccountID) (string, error) {
	token, ok := c.tokens[account]
	if !ok {
		return "", fmt.Errorf("%w: no credentials for account %q", core.ErrConfiguration, account)
	}
	return token, nil
}

// localID mirrors a remote status ID into the run's ID space. Numeric
// remote IDs are adopted verbatim so the strictly-increasing invariant
// carries over from the server.
func (c *Connected) localID(remote string) core.TootID {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.localIDs[remote]; ok {
		return id
	}

	var id core.TootID
	if n, err := strconv.ParseInt(remote, 10, 64); err == nil {
		id = core.TootID(n)
	} else {
		id = -c.nextLocal
		c.nextLocal++
	}
	c.localIDs[remote] = id
	c.remoteIDs[id] = remote
	return id
}

func (c *Connected) remoteID(id core.TootID) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remote, ok := c.remoteIDs[id]; ok {
		return remote, nil
	}
	return "", fmt.Errorf("%w: toot %d has no remote counterpart", core.ErrUnknownReference, id)
}

func (c *Connected) accountID(ctx context.Context, token string, target core.AccountID) (string, error) {
	c.mu.Lock()
	cached, ok := c.accounts[target]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	var acc *masto.StatusAccount
	err := c.do(ctx, func() error {
		var err error
		acc, err = c.client.Lookup(ctx, token, string(target))
		return err
	})
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.accounts[target] = acc.ID
	c.mu.Unlock()
	return acc.ID, nil
}

func transient(err error) bool {
	var apiErr *masto.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	// Network-level failures have no status code; retry them.
	return true
}

func (c *Connected) do(ctx context.Context, f func() error) error {
	err := retry.Do(ctx, c.policy, f, transient)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if transient(err) {
		return fmt.Errorf("%w: %w", core.ErrTransientBackend, err)
	}
	return err
}

func (c *Connected) Execute(ctx context.Context, action core.Action) (core.ActionResult, error) {
	if err := action.Validate(); err != nil {
		return core.ActionResult{}, err
	}

	token, err := c.token(action.Actor)
	if err != nil {
		return core.ActionResult{}, err
	}

	switch action.Kind {
	case core.ActionPost, core.ActionReply:
		req := masto.PostStatusRequest{
			Status:      action.Body,
			Visibility:  string(action.Visibility),
			SpoilerText: action.SpoilerText,
		}
		if action.ReplyTo != nil {
			remote, err := c.remoteID(*action.ReplyTo)
			if err != nil {
				return core.ActionResult{}, err
			}
			req.InReplyToID = &remote
		}

		var status *masto.Status
		if err := c.do(ctx, func() error {
			var err error
			status, err = c.client.PostStatus(ctx, token, req)
			return err
		}); err != nil {
			return core.ActionResult{}, err
		}
		id := c.localID(status.ID)
		return core.ActionResult{TootID: &id}, nil

	case core.ActionBoost:
		remote, err := c.remoteID(*action.TootID)
		if err != nil {
			return core.ActionResult{}, err
		}
		var status *masto.Status
		if err := c.do(ctx, func() error {
			var err error
			status, err = c.client.Reblog(ctx, token, remote)
			return err
		}); err != nil {
			return core.ActionResult{}, err
		}
		id := c.localID(status.ID)
		return core.ActionResult{TootID: &id}, nil

	case core.ActionLike:
		remote, err := c.remoteID(*action.TootID)
		if err != nil {
			return core.ActionResult{}, err
		}
		return core.ActionResult{}, c.do(ctx, func() error {
			_, err := c.client.Favourite(ctx, token, remote)
			return err
		})

	case core.ActionFollow, core.ActionUnfollow, core.ActionBlock, core.ActionUnblock, core.ActionMute, core.ActionUnmute:
		targetID, err := c.accountID(ctx, token, action.TargetAccount)
		if err != nil {
			return core.ActionResult{}, err
		}
		call := map[core.ActionKind]func(context.Context, string, string) (*masto.Relationship, error){
			core.ActionFollow:   c.client.Follow,
			core.ActionUnfollow: c.client.Unfollow,
			core.ActionBlock:    c.client.Block,
			core.ActionUnblock:  c.client.Unblock,
			core.ActionMute:     c.client.Mute,
			core.ActionUnmute:   c.client.Unmute,
		}[action.Kind]
		return core.ActionResult{}, c.do(ctx, func() error {
			_, err := call(ctx, token, targetID)
			return err
		})

	case core.ActionUpdateBio:
		return core.ActionResult{}, c.do(ctx, func() error {
			return c.client.UpdateCredentials(ctx, token, "", action.Body)
		})
	}

	return core.ActionResult{}, fmt.Errorf("%w: unhandled action kind %q", core.ErrInvalidAction, action.Kind)
}

// Observe mirrors the remote notifications and home timeline into the
// run's entity space. Remote IDs, timestamps and counters are consumed
// verbatim.
func (c *Connected) Observe(ctx context.Context, account core.AccountID) (core.Observation, error) {
	token, err := c.token(account)
	if err != nil {
		return core.Observation{}, err
	}

	// Notifications and the timeline are independent reads, fetch them
	// concurrently.
	notifJob := async.Job(func(_ context.Context) ([]*masto.Notification, error) {
		var notifications []*masto.Notification
		err := c.do(ctx, func() error {
			var err error
			notifications, err = c.client.Notifications(ctx, token, c.observationLimit)
			return err
		})
		return notifications, err
	})
	timelineJob := async.Job(func(_ context.Context) ([]*masto.Status, error) {
		var timeline []*masto.Status
		err := c.do(ctx, func() error {
			var err error
			timeline, err = c.client.HomeTimeline(ctx, token, c.observationLimit)
			return err
		})
		return timeline, err
	})

	notifications, err := notifJob.Wait()
	if err != nil {
		timelineJob.Stop()
		return core.Observation{}, err
	}
	timeline, err := timelineJob.Wait()
	if err != nil {
		return core.Observation{}, err
	}

	if err := c.do(ctx, func() error {
		return c.client.ClearNotifications(ctx, token)
	}); err != nil {
		return core.Observation{}, err
	}

	obs := core.Observation{Account: account}
	for _, status := range timeline {
		obs.Timeline = append(obs.Timeline, c.mirrorStatus(status))
	}
	for _, n := range notifications {
		notification := core.Notification{
			Kind:      notificationKind(n.Type),
			Actor:     core.AccountID(n.Account.Username),
			Target:    account,
			CreatedAt: n.CreatedAt,
		}
		if n.Status != nil {
			id := c.localID(n.Status.ID)
			notification.TootID = &id
		}
		obs.Notifications = append(obs.Notifications, notification)
	}
	return obs, nil
}

func (c *Connected) mirrorStatus(status *masto.Status) core.Toot {
	toot := core.Toot{
		ID:          c.localID(status.ID),
		Author:      core.AccountID(status.Account.Username),
		Body:        status.Content,
		CreatedAt:   status.CreatedAt,
		Visibility:  core.Visibility(status.Visibility),
		SpoilerText: status.Spoiler,
		Favourites:  status.FavouritesCount,
		Boosts:      status.ReblogsCount,
	}
	if status.InReplyTo != nil {
		id := c.localID(*status.InReplyTo)
		toot.InReplyTo = &id
	}
	if status.Reblog != nil {
		id := c.localID(status.Reblog.ID)
		toot.BoostOf = &id
	}
	return toot
}

func notificationKind(remote string) core.NotificationKind {
	switch remote {
	case "favourite":
		return core.NotificationFavourite
	case "reblog":
		return core.NotificationBoost
	case "follow":
		return core.NotificationFollow
	case "mention":
		return core.NotificationMention
	}
	return core.NotificationKind(remote)
}
