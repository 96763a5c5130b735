package chat

import (
	"context"
	"errors"
	"time"

	"github.com/agrimitra/agri-assist/internal/history"
)

// ErrNotConfirmed rejects a history clear that the user did not confirm.
var ErrNotConfirmed = errors.New("chat: history clear not confirmed")

// ExchangeRow is one question/answer pair on the history screen.
type ExchangeRow struct {
	Question history.Entry  `json:"question"`
	Answer   *history.Entry `json:"answer,omitempty"`
	AskedAt  time.Time      `json:"asked_at"`
}

// PairExchanges reconstructs display rows from a newest-first entry log.
// Each user entry pairs with the entry immediately before it in the slice
// (its chronological successor) when that entry is a model turn. A user entry
// without a model successor, including two consecutive user entries left by a
// failed generation, becomes an unanswered row. Rows come out newest question
// first.
func PairExchanges(entries []history.Entry) []ExchangeRow {
	rows := make([]ExchangeRow, 0, len(entries)/2+1)
	for i := range entries {
		if Role(entries[i].Role) != RoleUser {
			continue
		}
		var answer *history.Entry
		if i > 0 && Role(entries[i-1].Role) == RoleModel {
			answer = &entries[i-1]
		}
		rows = append(rows, ExchangeRow{
			Question: entries[i],
			Answer:   answer,
			AskedAt:  entries[i].CreatedAt,
		})
	}
	return rows
}

// Review is the read-only audit view over the persisted log. It shares the
// pairing algorithm with nothing else and holds no live session state.
type Review struct {
	store history.Store
}

func NewReview(store history.Store) *Review {
	return &Review{store: store}
}

// Rows fetches the persisted log and regroups it into display pairs.
func (r *Review) Rows(ctx context.Context, userID uint64, limit int) ([]ExchangeRow, error) {
	entries, err := r.store.Recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return PairExchanges(entries), nil
}

// Clear deletes the user's entire log. The destructive call only happens when
// confirmed is true; a store failure here is the one persistence failure that
// is surfaced to the user.
func (r *Review) Clear(ctx context.Context, userID uint64, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	return r.store.Clear(ctx, userID)
}
