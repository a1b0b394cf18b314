// Package retryx wraps bounded retry with fibonacci backoff around store and
// cache calls. Domain errors are terminal; only unexpected failures are
// retried, and only for operations that are safe to repeat.
package retryx

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/talkroom/talkroom/internal/common"
)

const baseDelay = 50 * time.Millisecond

// terminal reports whether err is a domain outcome that must be returned to
// the caller as-is instead of being retried.
func terminal(err error) bool {
	for _, sentinel := range []error{
		common.ErrValidation,
		common.ErrDuplicateMemberID,
		common.ErrMemberNotFound,
		common.ErrCredentialMismatch,
		common.ErrRoomNotFound,
		common.ErrInvalidRoomPassword,
		common.ErrInvalidToken,
		common.ErrTokenExpired,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// Do runs f, retrying unexpected errors up to maxRetries times with
// fibonacci backoff. f must be idempotent.
func Do(ctx context.Context, maxRetries uint64, f func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(maxRetries, retry.NewFibonacci(baseDelay))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := f(ctx)
		if err == nil || terminal(err) {
			return err
		}
		return retry.RetryableError(err)
	})
}

// DoWithResult is Do for functions returning a value.
func DoWithResult[T any](ctx context.Context, maxRetries uint64, f func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, maxRetries, func(ctx context.Context) error {
		var ferr error
		result, ferr = f(ctx)
		return ferr
	})
	return result, err
}
