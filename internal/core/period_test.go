package core

import (
	"errors"
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    Period
		wantErr bool
	}{
		{"weekly", "W", PeriodWeek, false},
		{"monthly", "M", PeriodMonth, false},
		{"yearly", "Y", PeriodYear, false},
		{"all time", "ALL", PeriodAll, false},
		{"lowercase accepted", "m", PeriodMonth, false},
		{"padded", " W ", PeriodWeek, false},
		{"unknown token", "Q", "", true},
		{"empty", "", "", true},
		{"full word rejected", "MONTH", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeriod(tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePeriod(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidPeriod) {
				t.Errorf("ParsePeriod(%q) error = %v, want ErrInvalidPeriod", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("ParsePeriod(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestPeriodStart(t *testing.T) {
	// Wednesday March 12, 2025
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		period Period
		want   time.Time
	}{
		{
			name:   "week starts most recent Sunday",
			period: PeriodWeek,
			want:   time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "month starts first calendar day",
			period: PeriodMonth,
			want:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "year starts January 1",
			period: PeriodYear,
			want:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "all time is unbounded",
			period: PeriodAll,
			want:   time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.period.Start(now)
			if err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Start() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPeriodStartOnSunday(t *testing.T) {
	// A Sunday resolves to itself, not the previous week.
	now := time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC)
	got, err := PeriodWeek.Start(now)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	want := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Start() = %v, want %v", got, want)
	}
}

func TestPeriodStartNeverInFuture(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)
	for _, p := range []Period{PeriodWeek, PeriodMonth, PeriodYear} {
		start, err := p.Start(now)
		if err != nil {
			t.Fatalf("Start(%s) error = %v", p, err)
		}
		if start.After(now) {
			t.Errorf("Start(%s) = %v is after now %v", p, start, now)
		}
	}
}

func TestPeriodStartUnknownToken(t *testing.T) {
	if _, err := Period("Q").Start(time.Now()); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("Start() error = %v, want ErrInvalidPeriod", err)
	}
}

func TestPeriodBounded(t *testing.T) {
	if PeriodAll.Bounded() {
		t.Error("PeriodAll.Bounded() = true, want false")
	}
	for _, p := range []Period{PeriodWeek, PeriodMonth, PeriodYear} {
		if !p.Bounded() {
			t.Errorf("%s.Bounded() = false, want true", p)
		}
	}
}
