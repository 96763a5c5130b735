package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrimitra/agri-assist/internal/history"
)

func entry(id, role, text string) history.Entry {
	return history.Entry{ID: id, UserID: 7, Role: role, Text: text, CreatedAt: time.Now().UTC()}
}

func TestPairExchanges_AlternatingLog(t *testing.T) {
	// Store order: newest first.
	entries := []history.Entry{
		entry("04", "model", "A2"),
		entry("03", "user", "Q2"),
		entry("02", "model", "A1"),
		entry("01", "user", "Q1"),
	}

	rows := PairExchanges(entries)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Question.Text != "Q2" || rows[0].Answer == nil || rows[0].Answer.Text != "A2" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Question.Text != "Q1" || rows[1].Answer == nil || rows[1].Answer.Text != "A1" {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestPairExchanges_LoneQuestionUnanswered(t *testing.T) {
	rows := PairExchanges([]history.Entry{entry("01", "user", "Q1")})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Answer != nil {
		t.Fatalf("expected unanswered row, got answer %+v", rows[0].Answer)
	}
	if rows[0].AskedAt.IsZero() {
		t.Fatalf("row should carry the question's creation time")
	}
}

func TestPairExchanges_ConsecutiveUsersBecomeTwoUnansweredRows(t *testing.T) {
	// A failed generation leaves a gap: two user entries in a row.
	entries := []history.Entry{
		entry("03", "user", "Q2"),
		entry("02", "user", "Q1"),
		entry("01", "model", "A0"),
	}

	rows := PairExchanges(entries)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Question.Text != "Q2" || rows[0].Answer != nil {
		t.Fatalf("Q2 should be unanswered, got %+v", rows[0])
	}
	// Q1's chronological successor is Q2 (a user turn), so Q1 pairs with
	// nothing; the older model entry belongs to an earlier exchange.
	if rows[1].Question.Text != "Q1" || rows[1].Answer != nil {
		t.Fatalf("Q1 should be unanswered, got %+v", rows[1])
	}
}

func TestReviewClear_RequiresConfirmation(t *testing.T) {
	store := &fakeStore{}
	if _, err := store.Append(context.Background(), 7, "user", "Q1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	review := NewReview(store)
	if err := review.Clear(context.Background(), 7, false); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if got := store.texts(7); len(got) != 1 {
		t.Fatalf("clearAll must not run without confirmation, log: %v", got)
	}

	if err := review.Clear(context.Background(), 7, true); err != nil {
		t.Fatalf("confirmed clear: %v", err)
	}
	if got := store.texts(7); len(got) != 0 {
		t.Fatalf("expected empty log after confirmed clear, got %v", got)
	}
}

func TestReviewClear_SurfacesStoreFailure(t *testing.T) {
	store := &fakeStore{fail: errors.New("permission denied")}
	review := NewReview(store)

	if err := review.Clear(context.Background(), 7, true); err == nil {
		t.Fatalf("clear failure must be surfaced")
	}
}

func TestReviewRows_FetchesAndPairs(t *testing.T) {
	store := &fakeStore{}
	for _, e := range []struct{ role, text string }{
		{"user", "Q1"}, {"model", "A1"}, {"user", "Q2"},
	} {
		if _, err := store.Append(context.Background(), 7, e.role, e.text); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rows, err := NewReview(store).Rows(context.Background(), 7, 20)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Question.Text != "Q2" || rows[0].Answer != nil {
		t.Fatalf("newest question first and unanswered, got %+v", rows[0])
	}
	if rows[1].Question.Text != "Q1" || rows[1].Answer == nil || rows[1].Answer.Text != "A1" {
		t.Fatalf("unexpected paired row: %+v", rows[1])
	}
}
