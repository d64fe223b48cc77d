package schedule

import (
	"errors"
	"testing"

	"calendar-booking-api/internal/model"
)

func TestRespondTransition(t *testing.T) {
	tests := []struct {
		from    model.BookingStatus
		accept  bool
		want    model.BookingStatus
		wantErr bool
	}{
		{model.StatusPending, true, model.StatusConfirmed, false},
		{model.StatusPending, false, model.StatusDeclined, false},
		{model.StatusConfirmed, true, "", true},
		{model.StatusConfirmed, false, "", true},
		{model.StatusDeclined, true, "", true},
	}
	for _, tt := range tests {
		got, err := respondTransition(&model.Booking{Status: tt.from}, tt.accept)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidState) {
				t.Errorf("%s accept=%v: want invalid state, got %v", tt.from, tt.accept, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s accept=%v: got %s, %v", tt.from, tt.accept, got, err)
		}
	}
}
