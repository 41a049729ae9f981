package split

import "github.com/shopspring/decimal"

// ExactStrategy uses the amount given for each participant
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() SplitType {
	return SplitTypeExact
}

// Validate checks every participant has an amount and that they sum to the total
func (s *ExactStrategy) Validate(totalAmount float64, participants []SplitInput) error {
	if err := checkParticipants(totalAmount, participants); err != nil {
		return err
	}

	totalExact := decimal.Zero
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingExactAmount
		}
		if *p.Amount < 0 {
			return ErrNegativeAmount
		}
		totalExact = totalExact.Add(decimal.NewFromFloat(*p.Amount))
	}

	if totalExact.Sub(decimal.NewFromFloat(totalAmount)).Abs().GreaterThan(tolerance) {
		return ErrInvalidExactAmounts
	}

	return nil
}

// Calculate returns the given amounts rounded to cents
func (s *ExactStrategy) Calculate(totalAmount float64, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	shares := make([]decimal.Decimal, len(participants))
	for i, p := range participants {
		shares[i] = decimal.NewFromFloat(*p.Amount).Round(2)
	}

	return toOutputs(participants, shares), nil
}
