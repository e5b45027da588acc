package core

import (
	"context"

	"gorm.io/gorm"
)

// Platform executes validated actions against a backend. Two
// implementations exist: simulated (world model) and connected (remote
// REST). Callers never know which one they hold.
type Platform interface {
	Execute(ctx context.Context, action Action) (ActionResult, error)
	Observe(ctx context.Context, account AccountID) (Observation, error)
}

// Decider is the external reasoning collaborator: it turns an
// observation into a free-form textual decision.
type Decider interface {
	Decide(ctx context.Context, req DecisionRequest) (string, error)
}

// EventLog is the append-only record of every attempted action.
type EventLog interface {
	Append(rec EventRecord) EventRecord
	Subscribe() <-chan EventRecord
}

type EventRepository interface {
	Insert(ctx context.Context, recs ...EventRecord) error
}

type DB interface {
	Model(a any) *gorm.DB
	EstimatedCount(tableName string) (int64, error)
}
