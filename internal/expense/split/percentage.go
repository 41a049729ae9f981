package split

import "github.com/shopspring/decimal"

// PercentageStrategy divides the expense by each participant's percentage
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(totalAmount float64, participants []SplitInput) error {
	if err := checkParticipants(totalAmount, participants); err != nil {
		return err
	}

	totalPercentage := decimal.Zero
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if *p.Percentage < 0 || *p.Percentage > 100 {
			return ErrPercentageOutOfRange
		}
		totalPercentage = totalPercentage.Add(decimal.NewFromFloat(*p.Percentage))
	}

	if totalPercentage.Sub(decimal.NewFromInt(100)).Abs().GreaterThan(tolerance) {
		return ErrInvalidPercentages
	}

	return nil
}

// Calculate rounds each share to cents; the last participant absorbs the
// rounding difference.
func (s *PercentageStrategy) Calculate(totalAmount float64, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	total := decimal.NewFromFloat(totalAmount).Round(2)
	hundred := decimal.NewFromInt(100)

	shares := make([]decimal.Decimal, len(participants))
	for i, p := range participants {
		shares[i] = total.Mul(decimal.NewFromFloat(*p.Percentage)).Div(hundred).Round(2)
	}
	absorb(total, shares, len(shares)-1)

	return toOutputs(participants, shares), nil
}
