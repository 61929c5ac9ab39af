package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrRepository    = errors.New("repository error")
	ErrQueue         = errors.New("queue error")
	ErrSourceMissing = errors.New("source file missing")
	ErrInvalidInput  = errors.New("invalid input")
)

// wrapRepo keeps the original chain intact so callers can still match
// domain.ErrNotFound through the usecase boundary.
func wrapRepo(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRepository, err)
}

func wrapQueue(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrQueue, err)
}
