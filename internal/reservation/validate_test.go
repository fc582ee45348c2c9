package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateRange(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	min := 30 * time.Minute
	max := 4 * time.Hour

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{"valid one hour", base, base.Add(time.Hour), nil},
		{"valid exactly min", base, base.Add(30 * time.Minute), nil},
		{"valid exactly max", base, base.Add(4 * time.Hour), nil},
		{"start equals end", base, base, ErrInvalidRange},
		{"start after end", base.Add(time.Hour), base, ErrInvalidRange},
		{"below minimum", base, base.Add(29 * time.Minute), ErrTooShort},
		{"above maximum", base, base.Add(4*time.Hour + time.Minute), ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(tt.start, tt.end, min, max)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	tests := []struct {
		name string
		s1   time.Time
		e1   time.Time
		s2   time.Time
		e2   time.Time
		want bool
	}{
		{"identical", at(1), at(2), at(1), at(2), true},
		{"partial overlap", at(1), at(2), at(1).Add(30 * time.Minute), at(2).Add(30 * time.Minute), true},
		{"contained", at(1), at(4), at(2), at(3), true},
		{"disjoint", at(1), at(2), at(3), at(4), false},
		{"touching endpoints", at(1), at(2), at(2), at(3), false},
		{"touching endpoints reversed", at(2), at(3), at(1), at(2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
		})
	}
}
