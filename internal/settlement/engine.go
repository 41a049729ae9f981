package settlement

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/expense"
)

// ErrMalformedExpense is returned when a stored expense cannot take part in
// a settlement. The whole calculation fails rather than skipping the record.
var ErrMalformedExpense = errors.New("malformed expense")

// Key joins a debtor and creditor the way settlement results are keyed
func Key(debtor, creditor string) string {
	return debtor + "-" + creditor
}

// Calculate sums, per debtor-creditor pair, what each split member owes the
// payer of each expense. Lines where the member paid are skipped. Reversed
// pairs are kept apart and currencies are not converted. Amounts are summed
// exactly as stored, with no rounding to a minor unit.
func Calculate(expenses []*expense.Expense) (map[string]float64, error) {
	totals := map[string]decimal.Decimal{}

	err := walk(expenses, func(e *expense.Expense, s expense.Split) {
		key := Key(s.MemberEmail, e.PaidBy)
		totals[key] = totals[key].Add(decimal.NewFromFloat(s.AmountOwed))
	})
	if err != nil {
		return nil, err
	}

	result := make(map[string]float64, len(totals))
	for key, amount := range totals {
		result[key] = amount.InexactFloat64()
	}
	return result, nil
}

// CalculateByCurrency is Calculate keyed by (debtor, creditor, currency), so
// amounts in different currencies are never added together. The output is
// sorted by debtor, creditor, then currency.
func CalculateByCurrency(expenses []*expense.Expense) ([]Balance, error) {
	type pair struct{ debtor, creditor, currency string }
	totals := map[pair]decimal.Decimal{}

	err := walk(expenses, func(e *expense.Expense, s expense.Split) {
		key := pair{s.MemberEmail, e.PaidBy, e.Currency}
		totals[key] = totals[key].Add(decimal.NewFromFloat(s.AmountOwed))
	})
	if err != nil {
		return nil, err
	}

	balances := make([]Balance, 0, len(totals))
	for key, amount := range totals {
		balances = append(balances, Balance{
			Debtor:   key.debtor,
			Creditor: key.creditor,
			Currency: key.currency,
			Amount:   amount.InexactFloat64(),
		})
	}
	sort.Slice(balances, func(i, j int) bool {
		a, b := balances[i], balances[j]
		if a.Debtor != b.Debtor {
			return a.Debtor < b.Debtor
		}
		if a.Creditor != b.Creditor {
			return a.Creditor < b.Creditor
		}
		return a.Currency < b.Currency
	})
	return balances, nil
}

// walk calls fn for every split line that is an obligation. It checks the
// whole list first so nothing is accumulated from a bad history.
func walk(expenses []*expense.Expense, fn func(*expense.Expense, expense.Split)) error {
	for _, e := range expenses {
		if err := checkExpense(e); err != nil {
			return err
		}
	}

	for _, e := range expenses {
		for _, s := range e.Splits {
			if s.MemberEmail == e.PaidBy {
				continue
			}
			fn(e, s)
		}
	}
	return nil
}

func checkExpense(e *expense.Expense) error {
	if e == nil {
		return fmt.Errorf("%w: nil record", ErrMalformedExpense)
	}
	if e.PaidBy == "" {
		return fmt.Errorf("%w: expense %s has no payer", ErrMalformedExpense, e.ID)
	}
	for i, s := range e.Splits {
		if s.MemberEmail == "" {
			return fmt.Errorf("%w: expense %s split %d has no member", ErrMalformedExpense, e.ID, i)
		}
		if s.AmountOwed <= 0 {
			return fmt.Errorf("%w: expense %s split %d owes %v", ErrMalformedExpense, e.ID, i, s.AmountOwed)
		}
	}
	return nil
}
