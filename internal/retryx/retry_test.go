package retryx

import (
	"context"
	"errors"
	"testing"

	"github.com/talkroom/talkroom/internal/common"
)

func TestDo_RetriesUnexpectedErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), 3, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_DomainErrorIsTerminal(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), 5, func(ctx context.Context) error {
		calls++
		return common.ErrRoomNotFound
	})
	if !errors.Is(err, common.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("domain error must not be retried, got %d calls", calls)
	}
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), 2, func(ctx context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected initial call plus 2 retries, got %d", calls)
	}
}

func TestDoWithResult(t *testing.T) {
	t.Parallel()

	got, err := DoWithResult(context.Background(), 1, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("DoWithResult error: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}
