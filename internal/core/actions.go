package core

import (
	"fmt"
	"unicode/utf8"
)

// ActionKind is the closed set of platform operations an agent can
// trigger. Anything outside this set is rejected at parse time.
type ActionKind string

const (
	ActionPost      ActionKind = "post"
	ActionReply     ActionKind = "reply"
	ActionBoost     ActionKind = "boost"
	ActionLike      ActionKind = "like"
	ActionFollow    ActionKind = "follow"
	ActionUnfollow  ActionKind = "unfollow"
	ActionBlock     ActionKind = "block"
	ActionUnblock   ActionKind = "unblock"
	ActionMute      ActionKind = "mute"
	ActionUnmute    ActionKind = "unmute"
	ActionUpdateBio ActionKind = "update-bio"
)

func (k ActionKind) Valid() bool {
	switch k {
	case ActionPost, ActionReply, ActionBoost, ActionLike,
		ActionFollow, ActionUnfollow, ActionBlock, ActionUnblock,
		ActionMute, ActionUnmute, ActionUpdateBio:
		return true
	}
	return false
}

// Action is the structured form handed from the parser to the platform
// adapter. Exactly one is produced per successful turn.
type Action struct {
	Kind          ActionKind `json:"kind"`
	Actor         AccountID  `json:"actor"`
	TargetAccount AccountID  `json:"target_account,omitempty"`
	TootID        *TootID    `json:"toot_id,omitempty"`
	Body          string     `json:"body,omitempty"`
	Visibility    Visibility `json:"visibility,omitempty"`
	ReplyTo       *TootID    `json:"reply_to,omitempty"`
	SpoilerText   string     `json:"spoiler_text,omitempty"`
}

// Validate checks structural requirements only: presence of required
// fields and the body limit. Reference validity is the parser's and the
// world's concern.
func (a Action) Validate() error {
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: unknown action kind %q", ErrInvalidAction, a.Kind)
	}
	if a.Actor == "" {
		return fmt.Errorf("%w: missing actor", ErrInvalidAction)
	}

	switch a.Kind {
	case ActionPost, ActionReply:
		if a.Body == "" {
			return fmt.Errorf("%w: %s requires a body", ErrInvalidAction, a.Kind)
		}
		if utf8.RuneCountInString(a.Body) > TootCharLimit {
			return fmt.Errorf("%w: body exceeds %d characters", ErrContentTooLong, TootCharLimit)
		}
		if a.Kind == ActionReply && a.ReplyTo == nil {
			return fmt.Errorf("%w: reply requires a toot id", ErrInvalidAction)
		}
		if a.Visibility != "" && !a.Visibility.Valid() {
			return fmt.Errorf("%w: unknown visibility %q", ErrInvalidAction, a.Visibility)
		}

	case ActionBoost, ActionLike:
		if a.TootID == nil {
			return fmt.Errorf("%w: %s requires a toot id", ErrInvalidAction, a.Kind)
		}

	case ActionFollow, ActionUnfollow, ActionBlock, ActionUnblock, ActionMute, ActionUnmute:
		if a.TargetAccount == "" {
			return fmt.Errorf("%w: %s requires a target account", ErrInvalidAction, a.Kind)
		}
		if a.TargetAccount == a.Actor {
			return fmt.Errorf("%w: %s cannot target self", ErrInvalidAction, a.Kind)
		}

	case ActionUpdateBio:
		if a.Body == "" {
			return fmt.Errorf("%w: update-bio requires a body", ErrInvalidAction)
		}
		if utf8.RuneCountInString(a.Body) > TootCharLimit {
			return fmt.Errorf("%w: bio exceeds %d characters", ErrContentTooLong, TootCharLimit)
		}
	}

	return nil
}

// ActionResult is the uniform result shape of both adapter backends.
type ActionResult struct {
	TootID *TootID `json:"toot_id,omitempty"`
}
