package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// SplitType defines the type of split strategy
type SplitType string

const (
	SplitTypeEven       SplitType = "EVEN"
	SplitTypePercentage SplitType = "PERCENTAGE"
	SplitTypeExact      SplitType = "EXACT"
)

// SplitInput represents a participant in a split with optional values
type SplitInput struct {
	MemberEmail string   `json:"memberEmail"`
	Percentage  *float64 `json:"percentage,omitempty"` // For PERCENTAGE split
	Amount      *float64 `json:"amount,omitempty"`     // For EXACT split
}

// SplitOutput is one participant's share of the expense
type SplitOutput struct {
	MemberEmail string  `json:"memberEmail"`
	AmountOwed  float64 `json:"amountOwed"`
}

// Strategy is the interface that all split strategies must implement.
// Every participant, the payer included, gets a line in the output.
type Strategy interface {
	// Calculate computes the split amounts for all participants
	Calculate(totalAmount float64, participants []SplitInput) ([]SplitOutput, error)

	// Type returns the type identifier for this strategy
	Type() SplitType

	// Validate checks if the inputs are valid for this strategy
	Validate(totalAmount float64, participants []SplitInput) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEven:
		return &EvenStrategy{}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{}, nil
	case SplitTypeExact:
		return &ExactStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSplitType, splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(SplitType(splitType))
}

var (
	ErrUnknownSplitType     = errors.New("unknown split type")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrDuplicateParticipant = errors.New("participants must be unique")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrInvalidExactAmounts  = errors.New("exact amounts must sum to total amount")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrMissingExactAmount   = errors.New("exact amount required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
)

var tolerance = decimal.New(1, -2)

func checkParticipants(totalAmount float64, participants []SplitInput) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, ok := seen[p.MemberEmail]; ok {
			return ErrDuplicateParticipant
		}
		seen[p.MemberEmail] = struct{}{}
	}
	return nil
}

// absorb adds whatever the rounded shares are short of total to line idx
func absorb(total decimal.Decimal, shares []decimal.Decimal, idx int) {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s)
	}
	shares[idx] = shares[idx].Add(total.Sub(sum))
}

func toOutputs(participants []SplitInput, shares []decimal.Decimal) []SplitOutput {
	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		outputs[i] = SplitOutput{
			MemberEmail: p.MemberEmail,
			AmountOwed:  shares[i].Round(2).InexactFloat64(),
		}
	}
	return outputs
}
