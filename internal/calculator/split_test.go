package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestNewSplit(t *testing.T) {
	inputs := []ParticipantInput{
		{UserID: "alice", Value: ptr(70)},
		{UserID: "bob"},
	}

	tests := []struct {
		method  models.SplitMethod
		want    models.SplitMethod
		wantErr error
	}{
		{models.SplitEqual, models.SplitEqual, nil},
		{models.SplitExact, models.SplitExact, nil},
		{models.SplitPercentage, models.SplitPercentage, nil},
		{"shares", "", ErrInvalidSplitMethod},
		{"", "", ErrInvalidSplitMethod},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			split, err := NewSplit(tt.method, inputs)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewSplit(%q) error = %v, want %v", tt.method, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSplit(%q) failed: %v", tt.method, err)
			}
			if split.Method() != tt.want {
				t.Errorf("Method() = %q, want %q", split.Method(), tt.want)
			}
		})
	}

	t.Run("exact keeps only supplied values", func(t *testing.T) {
		split, _ := NewSplit(models.SplitExact, inputs)
		exact := split.(ExactSplit)
		if len(exact.Amounts) != 1 || exact.Amounts["alice"] != 70 {
			t.Errorf("Amounts = %v, want map[alice:70]", exact.Amounts)
		}
	})
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		split        Split
		participants []string
		wantErr      error
		want         map[string]float64
	}{
		{
			name:         "equal two-person split",
			amount:       100,
			split:        EqualSplit{},
			participants: []string{"A", "B"},
			want:         map[string]float64{"A": 50, "B": 50},
		},
		{
			name:         "equal three-person split",
			amount:       100,
			split:        EqualSplit{},
			participants: []string{"A", "B", "C"},
			want:         map[string]float64{"A": 33.333, "B": 33.333, "C": 33.333},
		},
		{
			name:         "percentage with supplied values",
			amount:       90,
			split:        PercentageSplit{Percents: map[string]float64{"A": 60, "B": 40}},
			participants: []string{"A", "B"},
			want:         map[string]float64{"A": 54, "B": 36},
		},
		{
			name:         "percentage default is even",
			amount:       90,
			split:        PercentageSplit{Percents: map[string]float64{"A": 50}},
			participants: []string{"A", "B", "C"},
			want:         map[string]float64{"A": 45, "B": 30, "C": 30},
		},
		{
			name:         "exact with supplied values",
			amount:       100,
			split:        ExactSplit{Amounts: map[string]float64{"A": 70, "B": 30}},
			participants: []string{"A", "B"},
			want:         map[string]float64{"A": 70, "B": 30},
		},
		{
			name:         "exact is not normalized",
			amount:       100,
			split:        ExactSplit{Amounts: map[string]float64{"A": 70, "B": 20}},
			participants: []string{"A", "B"},
			want:         map[string]float64{"A": 70, "B": 20},
		},
		{
			name:         "exact default is flat amount over count",
			amount:       90,
			split:        ExactSplit{Amounts: map[string]float64{"A": 60}},
			participants: []string{"A", "B", "C"},
			want:         map[string]float64{"A": 60, "B": 30, "C": 30},
		},
		{
			name:         "single participant owes everything",
			amount:       42,
			split:        ExactSplit{Amounts: map[string]float64{"A": 10}},
			participants: []string{"A"},
			want:         map[string]float64{"A": 42},
		},
		{
			name:         "single participant percentage",
			amount:       42,
			split:        PercentageSplit{Percents: map[string]float64{"A": 25}},
			participants: []string{"A"},
			want:         map[string]float64{"A": 42},
		},
		{
			name:         "no participants should error",
			amount:       10,
			split:        EqualSplit{},
			participants: []string{},
			wantErr:      ErrNoParticipants,
		},
		{
			name:         "zero amount should error",
			amount:       0,
			split:        EqualSplit{},
			participants: []string{"A"},
			wantErr:      ErrInvalidAmount,
		},
		{
			name:         "negative amount should error",
			amount:       -5,
			split:        EqualSplit{},
			participants: []string{"A"},
			wantErr:      ErrInvalidAmount,
		},
		{
			name:         "infinite amount should error",
			amount:       math.Inf(1),
			split:        EqualSplit{},
			participants: []string{"A"},
			wantErr:      ErrInvalidAmount,
		},
		{
			name:         "nil split should error",
			amount:       10,
			split:        nil,
			participants: []string{"A"},
			wantErr:      ErrInvalidSplitMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocations, err := Allocate(tt.amount, tt.split, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Allocate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Allocate() failed: %v", err)
			}

			if len(allocations) != len(tt.participants) {
				t.Fatalf("got %d allocations, want %d", len(allocations), len(tt.participants))
			}
			for i, a := range allocations {
				if a.UserID != tt.participants[i] {
					t.Errorf("allocation %d user = %s, want %s", i, a.UserID, tt.participants[i])
				}
				if math.Abs(a.Share-tt.want[a.UserID]) > 0.01 {
					t.Errorf("%s share = %v, want %v", a.UserID, a.Share, tt.want[a.UserID])
				}
			}
		})
	}
}

func TestAllocate_EqualSharesSumToAmount(t *testing.T) {
	amounts := []float64{0.01, 1, 10, 99.99, 100, 333.33, 1234.56, 1e6}
	for _, amount := range amounts {
		for n := 1; n <= 12; n++ {
			participants := make([]string, n)
			for i := range participants {
				participants[i] = string(rune('a' + i))
			}

			allocations, err := Allocate(amount, EqualSplit{}, participants)
			if err != nil {
				t.Fatalf("Allocate(%v, n=%d) failed: %v", amount, n, err)
			}

			sum := 0.0
			for _, a := range allocations {
				if math.Abs(a.Share-amount/float64(n)) > 1e-9 {
					t.Errorf("amount=%v n=%d: share %v, want %v", amount, n, a.Share, amount/float64(n))
				}
				sum += a.Share
			}
			if math.Abs(sum-amount) > 0.01 {
				t.Errorf("amount=%v n=%d: shares sum to %v", amount, n, sum)
			}
		}
	}
}
