package split

import "github.com/shopspring/decimal"

// EvenStrategy divides the expense equally among all participants
type EvenStrategy struct{}

// Type returns the split type identifier
func (s *EvenStrategy) Type() SplitType {
	return SplitTypeEven
}

// Validate checks if the inputs are valid for an even split
func (s *EvenStrategy) Validate(totalAmount float64, participants []SplitInput) error {
	return checkParticipants(totalAmount, participants)
}

// Calculate gives every participant the same share rounded down to cents.
// Leftover cents go to the first participant.
func (s *EvenStrategy) Calculate(totalAmount float64, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	total := decimal.NewFromFloat(totalAmount).Round(2)
	share := total.Div(decimal.NewFromInt(int64(len(participants)))).RoundDown(2)

	shares := make([]decimal.Decimal, len(participants))
	for i := range shares {
		shares[i] = share
	}
	absorb(total, shares, 0)

	return toOutputs(participants, shares), nil
}
