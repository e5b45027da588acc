// Package actions turns an agent's free-form decision text into exactly
// one structured platform action, or rejects it. Rejection is the
// normal path for malformed or hallucinated decisions; the parser never
// guesses missing fields.
package actions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Jeffail/gabs"
	"github.com/samber/lo"

	"storsim/internal/core"
)

// Knowledge is the acting agent's known-reference set: what it has
// actually observed and may therefore legally reference. A toot ID
// outside Toots is invalid input even if the world knows it.
type Knowledge struct {
	Self     core.AccountID
	Toots    map[core.TootID]struct{}
	Accounts map[core.AccountID]struct{}
}

func (k Knowledge) knowsToot(id core.TootID) bool {
	_, ok := k.Toots[id]
	return ok
}

func (k Knowledge) knowsAccount(id core.AccountID) bool {
	_, ok := k.Accounts[id]
	return ok
}

type Parser struct{}

// Parse extracts one action from the decision text. The JSON fast path
// handles reasoners that emit structured output; the vocabulary path
// handles narrated decisions like
//
//	alice replies "I'll be there!" to toot 12
//
// Every referenced toot is cross-checked against know; unknown
// references yield ErrInvalidAction regardless of world state.
func (p *Parser) Parse(decision string, know Knowledge) (core.Action, error) {
	if know.Self == "" {
		return core.Action{}, fmt.Errorf("%w: no acting account", core.ErrInvalidAction)
	}

	action, ok := p.parseJSON(decision, know.Self)
	if !ok {
		var err error
		action, err = p.parseText(decision, know)
		if err != nil {
			return core.Action{}, err
		}
	}

	if err := action.Validate(); err != nil {
		return core.Action{}, err
	}
	if err := p.checkReferences(action, know); err != nil {
		return core.Action{}, err
	}
	return action, nil
}

// parseJSON handles a {...} block in the decision. Malformed JSON falls
// through to text parsing rather than failing the turn.
func (p *Parser) parseJSON(decision string, self core.AccountID) (core.Action, bool) {
	block := jsonBlockRe.FindString(decision)
	if block == "" {
		return core.Action{}, false
	}

	container, err := gabs.ParseJSON([]byte(block))
	if err != nil {
		return core.Action{}, false
	}

	kind, ok := firstString(container, "action", "kind")
	if !ok {
		return core.Action{}, false
	}

	action := core.Action{
		Kind:  core.ActionKind(strings.ToLower(strings.TrimSpace(kind))),
		Actor: self,
	}

	if body, ok := firstString(container, "body", "status", "content", "bio"); ok {
		action.Body = body
	}
	if target, ok := firstString(container, "target", "target_account", "account"); ok {
		action.TargetAccount = core.AccountID(strings.TrimPrefix(target, "@"))
	}
	if vis, ok := firstString(container, "visibility"); ok {
		action.Visibility = core.Visibility(vis)
	}
	if spoiler, ok := firstString(container, "spoiler_text", "spoiler"); ok {
		action.SpoilerText = spoiler
	}
	if id, ok := firstID(container, "toot_id", "post_id", "id"); ok {
		action.TootID = &id
	}
	if id, ok := firstID(container, "reply_to", "in_reply_to_id"); ok {
		action.ReplyTo = &id
	}

	// A reply given only a toot_id still threads correctly.
	if action.Kind == core.ActionReply && action.ReplyTo == nil {
		action.ReplyTo = action.TootID
	}

	return action, true
}

func (p *Parser) parseText(decision string, know Knowledge) (core.Action, error) {
	kind, ok := matchKind(decision)
	if !ok {
		return core.Action{}, fmt.Errorf("%w: no recognizable action in decision", core.ErrInvalidAction)
	}

	action := core.Action{
		Kind:  kind,
		Actor: know.Self,
	}

	if body := quotedRe.FindStringSubmatch(decision); body != nil {
		action.Body = body[1]
	}
	if target, ok := p.extractTarget(decision, know); ok {
		action.TargetAccount = target
	}
	if id, ok := extractTootID(decision); ok {
		switch kind {
		case core.ActionReply:
			action.ReplyTo = &id
		default:
			action.TootID = &id
		}
	}
	if vis := visibilityRe.FindString(decision); vis != "" {
		v := strings.ToLower(vis)
		if strings.HasPrefix(v, "follower") {
			v = string(core.VisibilityPrivate)
		}
		action.Visibility = core.Visibility(v)
	}

	return action, nil
}

// extractTarget prefers an explicit @mention, falling back to any known
// account name appearing in the text. The acting agent itself never
// counts.
func (p *Parser) extractTarget(decision string, know Knowledge) (core.AccountID, bool) {
	mentions := lo.FilterMap(mentionRe.FindAllStringSubmatch(decision, -1), func(m []string, _ int) (core.AccountID, bool) {
		id := core.AccountID(m[1])
		return id, id != know.Self
	})
	if len(mentions) > 0 {
		return mentions[0], true
	}

	lowered := strings.ToLower(decision)
	for account := range know.Accounts {
		if account == know.Self {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(string(account))) {
			return account, true
		}
	}
	return "", false
}

func (p *Parser) checkReferences(action core.Action, know Knowledge) error {
	refs := []*core.TootID{action.TootID, action.ReplyTo}
	for _, ref := range refs {
		if ref != nil && !know.knowsToot(*ref) {
			return fmt.Errorf("%w: toot %d was never observed by %q", core.ErrInvalidAction, *ref, know.Self)
		}
	}

	if action.TargetAccount != "" && !know.knowsAccount(action.TargetAccount) {
		return fmt.Errorf("%w: unknown account %q", core.ErrInvalidAction, action.TargetAccount)
	}
	return nil
}

func extractTootID(decision string) (core.TootID, bool) {
	m := tootIDRe.FindStringSubmatch(decision)
	if m == nil {
		return 0, false
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return core.TootID(n), true
}

func firstString(container *gabs.Container, paths ...string) (string, bool) {
	for _, path := range paths {
		if v, ok := container.Path(path).Data().(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func firstID(container *gabs.Container, paths ...string) (core.TootID, bool) {
	for _, path := range paths {
		switch v := container.Path(path).Data().(type) {
		case float64:
			return core.TootID(v), true
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return core.TootID(n), true
			}
		}
	}
	return 0, false
}
