package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storsim/internal/core"
)

// Model is the archived form of a core.EventRecord. The raw record is
// kept as jsonb next to the queryable columns.
type Model struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"index"`
	Seq       int64  `gorm:"index"`
	Episode   int
	Round     int
	Timestamp time.Time
	Actor     string
	Kind      string
	Outcome   string
	Reason    string
	TootID    *int64
	Raw       []byte `gorm:"type:jsonb"`
}

func (Model) TableName() string {
	return "events"
}

type Repository struct {
	DB core.DB
}

func (r *Repository) Insert(_ context.Context, recs ...core.EventRecord) error {
	if len(recs) == 0 {
		return nil
	}

	rows := make([]Model, 0, len(recs))
	for _, rec := range recs {
		row, err := fromRecord(rec)
		if err != nil {
			return fmt.Errorf("marshaling event %d: %w", rec.Seq, err)
		}
		rows = append(rows, row)
	}
	return r.DB.Model(&Model{}).Create(&rows).Error
}

func fromRecord(rec core.EventRecord) (Model, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return Model{}, err
	}

	row := Model{
		RunID:     rec.RunID,
		Seq:       rec.Seq,
		Episode:   rec.Episode,
		Round:     rec.Round,
		Timestamp: rec.Timestamp,
		Actor:     string(rec.Actor),
		Outcome:   string(rec.Outcome),
		Reason:    rec.Reason,
		Raw:       raw,
	}
	if rec.Action != nil {
		row.Kind = string(rec.Action.Kind)
	}
	if rec.TootID != nil {
		id := int64(*rec.TootID)
		row.TootID = &id
	}
	return row, nil
}
