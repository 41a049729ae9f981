package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func members(emails ...string) []SplitInput {
	out := make([]SplitInput, len(emails))
	for i, e := range emails {
		out[i] = SplitInput{MemberEmail: e}
	}
	return out
}

func sum(outputs []SplitOutput) float64 {
	var total float64
	for _, o := range outputs {
		total += o.AmountOwed
	}
	return total
}

func TestFactory(t *testing.T) {
	f := NewSplitStrategyFactory()

	for _, typ := range []SplitType{SplitTypeEven, SplitTypePercentage, SplitTypeExact} {
		s, err := f.Create(typ)
		require.NoError(t, err)
		assert.Equal(t, typ, s.Type())
	}

	_, err := f.CreateFromString("SHARES")
	assert.ErrorIs(t, err, ErrUnknownSplitType)
}

func TestEvenStrategy(t *testing.T) {
	s := &EvenStrategy{}

	t.Run("divides evenly including payer", func(t *testing.T) {
		out, err := s.Calculate(30, members("a@x.io", "b@x.io", "c@x.io"))
		require.NoError(t, err)
		assert.Equal(t, []SplitOutput{
			{MemberEmail: "a@x.io", AmountOwed: 10},
			{MemberEmail: "b@x.io", AmountOwed: 10},
			{MemberEmail: "c@x.io", AmountOwed: 10},
		}, out)
	})

	t.Run("first participant absorbs remainder", func(t *testing.T) {
		out, err := s.Calculate(100, members("a@x.io", "b@x.io", "c@x.io"))
		require.NoError(t, err)
		assert.Equal(t, 33.34, out[0].AmountOwed)
		assert.Equal(t, 33.33, out[1].AmountOwed)
		assert.Equal(t, 33.33, out[2].AmountOwed)
		assert.InDelta(t, 100, sum(out), 0.001)
	})

	t.Run("rejects empty and duplicates", func(t *testing.T) {
		_, err := s.Calculate(10, nil)
		assert.ErrorIs(t, err, ErrNoParticipants)

		_, err = s.Calculate(10, members("a@x.io", "a@x.io"))
		assert.ErrorIs(t, err, ErrDuplicateParticipant)
	})
}

func TestPercentageStrategy(t *testing.T) {
	s := &PercentageStrategy{}

	out, err := s.Calculate(100, []SplitInput{
		{MemberEmail: "a@x.io", Percentage: ptr(33.33)},
		{MemberEmail: "b@x.io", Percentage: ptr(33.33)},
		{MemberEmail: "c@x.io", Percentage: ptr(33.34)},
	})
	require.NoError(t, err)
	assert.Equal(t, 33.33, out[0].AmountOwed)
	assert.Equal(t, 33.33, out[1].AmountOwed)
	assert.Equal(t, 33.34, out[2].AmountOwed)
	assert.InDelta(t, 100, sum(out), 0.001)

	tests := []struct {
		name  string
		input []SplitInput
		want  error
	}{
		{"missing percentage", []SplitInput{{MemberEmail: "a@x.io"}}, ErrMissingPercentage},
		{"out of range", []SplitInput{{MemberEmail: "a@x.io", Percentage: ptr(120)}}, ErrPercentageOutOfRange},
		{"not 100", []SplitInput{
			{MemberEmail: "a@x.io", Percentage: ptr(50)},
			{MemberEmail: "b@x.io", Percentage: ptr(40)},
		}, ErrInvalidPercentages},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Validate(100, tt.input), tt.want)
		})
	}
}

func TestExactStrategy(t *testing.T) {
	s := &ExactStrategy{}

	out, err := s.Calculate(30, []SplitInput{
		{MemberEmail: "a@x.io", Amount: ptr(12.5)},
		{MemberEmail: "b@x.io", Amount: ptr(17.5)},
	})
	require.NoError(t, err)
	assert.Equal(t, []SplitOutput{
		{MemberEmail: "a@x.io", AmountOwed: 12.5},
		{MemberEmail: "b@x.io", AmountOwed: 17.5},
	}, out)

	_, err = s.Calculate(30, []SplitInput{{MemberEmail: "a@x.io", Amount: ptr(29.5)}})
	assert.ErrorIs(t, err, ErrInvalidExactAmounts)

	_, err = s.Calculate(30, []SplitInput{{MemberEmail: "a@x.io"}})
	assert.ErrorIs(t, err, ErrMissingExactAmount)
}
