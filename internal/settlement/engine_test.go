package settlement

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/groupsplit/internal/expense"
)

func exp(paidBy, currency string, splits ...expense.Split) *expense.Expense {
	return &expense.Expense{ID: uuid.New(), PaidBy: paidBy, Currency: currency, Splits: splits}
}

func line(member string, amount float64) expense.Split {
	return expense.Split{MemberEmail: member, AmountOwed: amount}
}

func TestCalculatePayerSharesSkipped(t *testing.T) {
	result, err := Calculate([]*expense.Expense{
		exp("a", "INR", line("a", 10), line("b", 10), line("c", 10)),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"b-a": 10, "c-a": 10}, result)
}

func TestCalculateDoesNotNet(t *testing.T) {
	result, err := Calculate([]*expense.Expense{
		exp("a", "INR", line("b", 5)),
		exp("b", "INR", line("a", 5)),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"b-a": 5, "a-b": 5}, result)
}

func TestCalculateAccumulatesWithoutDrift(t *testing.T) {
	var expenses []*expense.Expense
	for i := 0; i < 10; i++ {
		expenses = append(expenses, exp("a", "INR", line("b", 0.1)))
	}

	result, err := Calculate(expenses)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result["b-a"])
}

func TestCalculateKeepsSubCentAmounts(t *testing.T) {
	result, err := Calculate([]*expense.Expense{
		exp("a", "INR", line("a", 0.001), line("b", 0.004)),
		exp("a", "INR", line("c", 3.333)),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"b-a": 0.004, "c-a": 3.333}, result)

	balances, err := CalculateByCurrency([]*expense.Expense{
		exp("a", "KWD", line("b", 1.2345)),
		exp("a", "KWD", line("b", 0.0005)),
	})
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, 1.235, balances[0].Amount)
}

func TestCalculateEmpty(t *testing.T) {
	result, err := Calculate(nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestCalculateOrderIndependentAndIdempotent(t *testing.T) {
	expenses := []*expense.Expense{
		exp("a", "INR", line("a", 10), line("b", 10), line("c", 10)),
		exp("b", "INR", line("a", 7.25), line("b", 2.75)),
		exp("c", "USD", line("a", 3.33), line("b", 3.33), line("c", 3.34)),
		exp("a", "INR", line("c", 0.01)),
	}

	want, err := Calculate(expenses)
	require.NoError(t, err)

	again, err := Calculate(expenses)
	require.NoError(t, err)
	assert.Equal(t, want, again)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]*expense.Expense(nil), expenses...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := Calculate(shuffled)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for key := range want {
		assert.NotContains(t, []string{"a-a", "b-b", "c-c"}, key)
	}
}

func TestCalculateRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		bad  *expense.Expense
	}{
		{"no payer", exp("", "INR", line("b", 5))},
		{"no member", exp("a", "INR", line("", 5))},
		{"zero owed", exp("a", "INR", line("b", 0))},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate([]*expense.Expense{exp("a", "INR", line("b", 5)), tt.bad})
			assert.ErrorIs(t, err, ErrMalformedExpense)
		})
	}
}

func TestCalculateByCurrency(t *testing.T) {
	balances, err := CalculateByCurrency([]*expense.Expense{
		exp("a", "USD", line("b", 5)),
		exp("a", "INR", line("b", 100), line("a", 50)),
		exp("a", "INR", line("b", 20)),
	})
	require.NoError(t, err)
	assert.Equal(t, []Balance{
		{Debtor: "b", Creditor: "a", Currency: "INR", Amount: 120},
		{Debtor: "b", Creditor: "a", Currency: "USD", Amount: 5},
	}, balances)
}
