package schedule

import (
	"errors"
	"fmt"

	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/model"
)

var (
	ErrInvalidRange = errors.New("end must be after start")
	ErrConflict     = errors.New("time conflicts with existing item")
	ErrUnauthorized = errors.New("not allowed")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
)

// ConflictError lists every item that blocked an admission.
type ConflictError struct {
	Msg   string
	Items []Item
}

func (e *ConflictError) Error() string {
	if e.Msg == "" {
		return ErrConflict.Error()
	}
	return e.Msg
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

func isDomain(err error) bool {
	for _, target := range []error{ErrInvalidRange, ErrConflict, ErrUnauthorized, ErrNotFound, ErrInvalidState} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// storeErr turns store failures into domain errors where one applies and
// wraps everything else with the failing operation.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isDomain(err):
		return err
	case errors.Is(err, model.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, model.ErrOverlap):
		// storage guard caught a race the advisory lock should have prevented
		return &ConflictError{}
	case errors.Is(err, interval.ErrInvalidRange):
		return ErrInvalidRange
	}
	return fmt.Errorf("%s: %w", op, err)
}
