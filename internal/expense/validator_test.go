package expense

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/groupsplit/internal/expense/split"
	"github.com/fkhayef/groupsplit/pkg/validation"
)

func newValidator() *Validator {
	return NewValidator("INR", split.NewSplitStrategyFactory())
}

func validCreate() *CreateExpenseRequest {
	return &CreateExpenseRequest{
		GroupID: uuid.NewString(),
		Title:   "Dinner",
		Amount:  30,
		PaidBy:  "a@example.com",
		Splits: []Split{
			{MemberEmail: "a@example.com", AmountOwed: 10},
			{MemberEmail: "b@example.com", AmountOwed: 10},
			{MemberEmail: "c@example.com", AmountOwed: 10},
		},
	}
}

func fieldErrors(t *testing.T, err error) *validation.Error {
	t.Helper()
	var verr *validation.Error
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr
}

func TestValidateCreateNormalizes(t *testing.T) {
	req := validCreate()
	req.Title = "  Dinner  "
	req.PaidBy = " A@Example.com"
	req.Splits[0].MemberEmail = "A@EXAMPLE.COM"

	require.NoError(t, newValidator().ValidateCreate(req))
	assert.Equal(t, "Dinner", req.Title)
	assert.Equal(t, "INR", req.Currency)
	assert.Equal(t, "a@example.com", req.PaidBy)
	assert.Equal(t, "a@example.com", req.Splits[0].MemberEmail)
}

func TestValidateCreateSumMismatch(t *testing.T) {
	req := validCreate()
	req.Splits[2].AmountOwed = 9.5

	verr := fieldErrors(t, newValidator().ValidateCreate(req))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "splits", verr.Fields[0].Field)
	assert.Contains(t, verr.Fields[0].Message, "29.50")
	assert.Contains(t, verr.Fields[0].Message, "30.00")
}

func TestValidateCreateTolerance(t *testing.T) {
	req := validCreate()
	req.Amount = 100
	req.Splits = []Split{
		{MemberEmail: "a@example.com", AmountOwed: 33.33},
		{MemberEmail: "b@example.com", AmountOwed: 33.33},
		{MemberEmail: "c@example.com", AmountOwed: 33.33},
	}
	assert.NoError(t, newValidator().ValidateCreate(req))

	req.Splits[2].AmountOwed = 33.32
	fieldErrors(t, newValidator().ValidateCreate(req))
}

func TestValidateCreatePayerNotInSplits(t *testing.T) {
	req := validCreate()
	req.PaidBy = "x@example.com"

	verr := fieldErrors(t, newValidator().ValidateCreate(req))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "paidBy", verr.Fields[0].Field)
}

func TestValidateCreateReportsEverything(t *testing.T) {
	req := &CreateExpenseRequest{
		GroupID:     "nope",
		Title:       "x",
		Description: strings.Repeat("d", 501),
		Amount:      -1,
		Currency:    "EURO",
		PaidBy:      "not-an-email",
		Splits: []Split{
			{MemberEmail: "bad", AmountOwed: 0},
		},
	}

	verr := fieldErrors(t, newValidator().ValidateCreate(req))
	for _, field := range []string{
		"groupId", "title", "description", "amount", "currency", "paidBy",
		"splits[0].memberEmail", "splits[0].amountOwed", "splits",
	} {
		assert.True(t, verr.Has(field), "missing error for %s", field)
	}
}

func TestValidateCreateEmptySplits(t *testing.T) {
	req := validCreate()
	req.Splits = nil

	verr := fieldErrors(t, newValidator().ValidateCreate(req))
	assert.True(t, verr.Has("splits"))
	assert.False(t, verr.Has("paidBy"))
}

func TestValidateCreateWithSplitType(t *testing.T) {
	req := validCreate()
	req.Splits = nil
	req.Amount = 100
	req.SplitType = "even"
	req.Participants = []split.SplitInput{
		{MemberEmail: "A@example.com"},
		{MemberEmail: "b@example.com"},
		{MemberEmail: "c@example.com"},
	}

	require.NoError(t, newValidator().ValidateCreate(req))
	require.Len(t, req.Splits, 3)
	assert.Equal(t, Split{MemberEmail: "a@example.com", AmountOwed: 33.34}, req.Splits[0])

	req = validCreate()
	req.Splits = nil
	req.SplitType = "SHARES"
	verr := fieldErrors(t, newValidator().ValidateCreate(req))
	assert.True(t, verr.Has("splitType"))
	assert.False(t, verr.Has("splits"))
}

func TestValidateUpdatePartialPolicy(t *testing.T) {
	v := newValidator()
	splits := []Split{{MemberEmail: "a@example.com", AmountOwed: 5}}

	t.Run("splits without amount skip the sum check", func(t *testing.T) {
		assert.NoError(t, v.ValidateUpdate(&UpdateExpenseRequest{Splits: splits}))
	})

	t.Run("amount and splits are cross-checked", func(t *testing.T) {
		amount := 30.0
		verr := fieldErrors(t, v.ValidateUpdate(&UpdateExpenseRequest{Amount: &amount, Splits: splits}))
		assert.True(t, verr.Has("splits"))
	})

	t.Run("payer checked only with splits", func(t *testing.T) {
		payer := "z@example.com"
		assert.NoError(t, v.ValidateUpdate(&UpdateExpenseRequest{PaidBy: &payer}))

		verr := fieldErrors(t, v.ValidateUpdate(&UpdateExpenseRequest{PaidBy: &payer, Splits: splits}))
		assert.True(t, verr.Has("paidBy"))
	})

	t.Run("field rules still apply", func(t *testing.T) {
		title := " a "
		currency := "dollar"
		verr := fieldErrors(t, v.ValidateUpdate(&UpdateExpenseRequest{Title: &title, Currency: &currency}))
		assert.True(t, verr.Has("title"))
		assert.True(t, verr.Has("currency"))
	})
}

func TestValidateUpdateAgainstStored(t *testing.T) {
	v := newValidator()
	stored := &Expense{
		PaidBy: "a@example.com",
		Splits: []Split{{MemberEmail: "a@example.com", AmountOwed: 5}, {MemberEmail: "b@example.com", AmountOwed: 5}},
	}
	payer := "b@example.com"
	stranger := "z@example.com"
	withoutA := []Split{{MemberEmail: "b@example.com", AmountOwed: 10}}

	assert.NoError(t, v.ValidateUpdateAgainst(stored, &UpdateExpenseRequest{}))
	assert.NoError(t, v.ValidateUpdateAgainst(stored, &UpdateExpenseRequest{PaidBy: &payer}))
	assert.NoError(t, v.ValidateUpdateAgainst(stored, &UpdateExpenseRequest{PaidBy: &stranger, Splits: withoutA}),
		"both sides sent are checked by ValidateUpdate")

	verr := fieldErrors(t, v.ValidateUpdateAgainst(stored, &UpdateExpenseRequest{PaidBy: &stranger}))
	assert.True(t, verr.Has("paidBy"))

	verr = fieldErrors(t, v.ValidateUpdateAgainst(stored, &UpdateExpenseRequest{Splits: withoutA}))
	assert.True(t, verr.Has("paidBy"))
}
