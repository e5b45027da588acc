package core

import (
	"time"
)

// AccountID is the stable handle of an account, e.g. "alice".
type AccountID string

// TootID identifies a toot. IDs are unique and strictly increasing
// within a run; connected mode mirrors remote IDs verbatim.
type TootID int64

type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private" // follower-only
	VisibilityDirect   Visibility = "direct"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate, VisibilityDirect:
		return true
	}
	return false
}

// TootCharLimit is the platform body limit, counted in runes.
const TootCharLimit = 500

type Account struct {
	ID          AccountID `json:"id"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	Role        string    `json:"role"`

	Following map[AccountID]struct{} `json:"-"`
	Blocking  map[AccountID]struct{} `json:"-"`
	Muting    map[AccountID]struct{} `json:"-"`
}

type Toot struct {
	ID          TootID     `json:"id"`
	Author      AccountID  `json:"author"`
	Body        string     `json:"body"`
	CreatedAt   time.Time  `json:"created_at"`
	Visibility  Visibility `json:"visibility"`
	InReplyTo   *TootID    `json:"in_reply_to,omitempty"`
	BoostOf     *TootID    `json:"boost_of,omitempty"`
	SpoilerText string     `json:"spoiler_text,omitempty"`

	Favourites int `json:"favourites"`
	Boosts     int `json:"boosts"`
}

type NotificationKind string

const (
	NotificationReply     NotificationKind = "reply"
	NotificationMention   NotificationKind = "mention"
	NotificationFavourite NotificationKind = "favourite"
	NotificationBoost     NotificationKind = "boost"
	NotificationFollow    NotificationKind = "follow"
)

type Notification struct {
	Kind      NotificationKind `json:"kind"`
	Actor     AccountID        `json:"actor"`
	Target    AccountID        `json:"target"`
	TootID    *TootID          `json:"toot_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Observation is what an agent sees at the start of its turn: its
// recent home timeline and pending notifications. It is the only
// read path agents have into platform state.
type Observation struct {
	Account       AccountID      `json:"account"`
	Timeline      []Toot         `json:"timeline"`
	Notifications []Notification `json:"notifications"`
}

// DecisionRequest is handed to the external reasoning collaborator.
type DecisionRequest struct {
	Account     AccountID
	DisplayName string
	Role        string
	Observation Observation
	// Feedback from previous attempts in the same turn, empty on the
	// first attempt. Lets the reasoner correct an invalid decision.
	Feedback string
	Attempt  int
}

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeInvalid Outcome = "invalid"
	OutcomeNoop    Outcome = "noop"
)

// EventRecord is one line of the append-only event log.
type EventRecord struct {
	Seq       int64     `json:"seq"`
	RunID     string    `json:"run_id"`
	Episode   int       `json:"episode"`
	Round     int       `json:"round"`
	Timestamp time.Time `json:"timestamp"`
	Actor     AccountID `json:"actor"`
	Action    *Action   `json:"action,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	TootID    *TootID   `json:"toot_id,omitempty"`
}
