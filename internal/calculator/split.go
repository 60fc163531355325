package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	ErrInvalidAmount      = errors.New("amount must be a positive finite number")
	ErrInvalidSplitMethod = errors.New("unknown split method")
	ErrNoParticipants     = errors.New("must have at least one participant")
)

// ParticipantInput is one participant as supplied by the caller.
// Value is the exact share for exact splits and the percentage for percentage splits;
// nil means the caller left it to the default.
type ParticipantInput struct {
	UserID string
	Value  *float64
}

// Allocation is the computed share for one participant.
type Allocation struct {
	UserID string
	Share  float64
}

// Split is the allocation strategy of an expense. The implementations are
// EqualSplit, ExactSplit and PercentageSplit; no others exist.
type Split interface {
	Method() models.SplitMethod
	shareFor(userID string, amount float64, count int) float64
}

// EqualSplit divides the amount evenly.
type EqualSplit struct{}

// ExactSplit uses caller-supplied amounts. Participants without an entry
// default to an even share.
type ExactSplit struct {
	Amounts map[string]float64
}

// PercentageSplit uses caller-supplied percentages. Participants without an
// entry default to an even percentage.
type PercentageSplit struct {
	Percents map[string]float64
}

func (EqualSplit) Method() models.SplitMethod      { return models.SplitEqual }
func (ExactSplit) Method() models.SplitMethod      { return models.SplitExact }
func (PercentageSplit) Method() models.SplitMethod { return models.SplitPercentage }

func (EqualSplit) shareFor(_ string, amount float64, count int) float64 {
	return amount / float64(count)
}

func (s ExactSplit) shareFor(userID string, amount float64, count int) float64 {
	if v, ok := s.Amounts[userID]; ok {
		return v
	}
	return amount / float64(count)
}

func (s PercentageSplit) shareFor(userID string, amount float64, count int) float64 {
	pct, ok := s.Percents[userID]
	if !ok {
		pct = 100 / float64(count)
	}
	return amount * pct / 100
}

// NewSplit builds the split for method from the caller's participant inputs.
// Values are ignored for equal splits.
func NewSplit(method models.SplitMethod, inputs []ParticipantInput) (Split, error) {
	switch method {
	case models.SplitEqual:
		return EqualSplit{}, nil
	case models.SplitExact:
		return ExactSplit{Amounts: collectValues(inputs)}, nil
	case models.SplitPercentage:
		return PercentageSplit{Percents: collectValues(inputs)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSplitMethod, method)
	}
}

func collectValues(inputs []ParticipantInput) map[string]float64 {
	values := make(map[string]float64)
	for _, in := range inputs {
		if in.Value != nil {
			values[in.UserID] = *in.Value
		}
	}
	return values
}

// Allocate computes each participant's share of amount, in participant order.
// A lone participant always owes the full amount.
//
// Allocate does not check that the shares add up to amount: exact and
// percentage splits take caller values that may not.
func Allocate(amount float64, split Split, participants []string) ([]Allocation, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}
	if split == nil {
		return nil, ErrInvalidSplitMethod
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}

	if len(participants) == 1 {
		return []Allocation{{UserID: participants[0], Share: amount}}, nil
	}

	allocations := make([]Allocation, len(participants))
	for i, userID := range participants {
		allocations[i] = Allocation{
			UserID: userID,
			Share:  split.shareFor(userID, amount, len(participants)),
		}
	}
	return allocations, nil
}
