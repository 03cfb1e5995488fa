package contexthelpers_test

import (
	"net/http/httptest"
	"testing"
	"testing/synctest"
	"time"

	"github.com/myrjola/habitapp/internal/contexthelpers"
)

func TestToday(t *testing.T) {
	// The synctest clock starts at 2000-01-01 00:00 UTC.
	synctest.Test(t, func(t *testing.T) {
		time.Sleep(2 * time.Hour)
		tests := []struct {
			name string
			loc  *time.Location
			want time.Time
		}{
			{name: "no location defaults to UTC", loc: nil, want: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
			{
				name: "behind UTC is still yesterday",
				loc:  time.FixedZone("UTC-5", -5*60*60),
				want: time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC),
			},
			{
				name: "ahead of UTC",
				loc:  time.FixedZone("UTC+3", 3*60*60),
				want: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		}
		for _, tt := range tests {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.loc != nil {
				r = contexthelpers.SetLocation(r, tt.loc)
			}
			if got := contexthelpers.Today(r.Context()); !got.Equal(tt.want) {
				t.Errorf("%s: Today() = %s, want %s", tt.name, got, tt.want)
			}
		}
	})
}

func TestAuthenticateContext(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if contexthelpers.IsAuthenticated(r.Context()) {
		t.Fatal("fresh request must not be authenticated")
	}
	r = contexthelpers.AuthenticateContext(r, 42)
	if !contexthelpers.IsAuthenticated(r.Context()) {
		t.Error("expected authenticated context")
	}
	if got := contexthelpers.AuthenticatedUserID(r.Context()); got != 42 {
		t.Errorf("AuthenticatedUserID() = %d, want 42", got)
	}
}
