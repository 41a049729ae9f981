package expense

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/expense/split"
	"github.com/fkhayef/groupsplit/pkg/validation"
)

// sumTolerance is the largest allowed gap between an amount and its splits
var sumTolerance = decimal.New(1, -2)

// Validator checks expense payloads and normalizes them in place.
// Every violation is reported, not just the first.
type Validator struct {
	defaultCurrency string
	splits          *split.Factory
}

// NewValidator creates a validator that fills in defaultCurrency when a
// payload omits one
func NewValidator(defaultCurrency string, splits *split.Factory) *Validator {
	return &Validator{defaultCurrency: defaultCurrency, splits: splits}
}

// ValidateCreate checks a new expense. When splitType is set and splits are
// absent, splits are computed from participants first.
func (v *Validator) ValidateCreate(req *CreateExpenseRequest) error {
	var c validation.Collector

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		req.Currency = v.defaultCurrency
	}
	req.PaidBy = validation.NormalizeEmail(req.PaidBy)

	_, err := uuid.Parse(req.GroupID)
	c.Check(err == nil, "groupId", "must be a valid group ID")
	checkTitle(&c, req.Title)
	checkDescription(&c, req.Description)
	checkAmount(&c, req.Amount)
	checkCurrency(&c, req.Currency)
	checkPayer(&c, req.PaidBy)

	computed := true
	if len(req.Splits) == 0 && req.SplitType != "" {
		req.Splits, computed = v.computeSplits(&c, req)
	}

	if computed {
		normalizeSplits(req.Splits)
		if checkSplits(&c, req.Splits) {
			checkSum(&c, req.Amount, req.Splits)
			checkPayerInSplits(&c, req.PaidBy, req.Splits)
		}
	}

	return c.Err()
}

// ValidateUpdate checks a partial update. The sum check runs only when both
// amount and splits are present, and the payer check only when both paidBy
// and splits are present.
func (v *Validator) ValidateUpdate(req *UpdateExpenseRequest) error {
	var c validation.Collector

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
		checkTitle(&c, title)
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		req.Description = &description
		checkDescription(&c, description)
	}
	if req.Amount != nil {
		checkAmount(&c, *req.Amount)
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		req.Currency = &currency
		checkCurrency(&c, currency)
	}
	if req.PaidBy != nil {
		paidBy := validation.NormalizeEmail(*req.PaidBy)
		req.PaidBy = &paidBy
		checkPayer(&c, paidBy)
	}

	if req.Splits != nil {
		normalizeSplits(req.Splits)
		if checkSplits(&c, req.Splits) {
			if req.Amount != nil {
				checkSum(&c, *req.Amount, req.Splits)
			}
			if req.PaidBy != nil {
				checkPayerInSplits(&c, *req.PaidBy, req.Splits)
			}
		}
	}

	return c.Err()
}

// ValidateUpdateAgainst checks that the payer stays among the split members
// when an update changes only one of paidBy and splits. The missing side is
// taken from the stored expense.
func (v *Validator) ValidateUpdateAgainst(stored *Expense, req *UpdateExpenseRequest) error {
	if (req.PaidBy == nil) == (req.Splits == nil) {
		return nil
	}

	paidBy, splits := stored.PaidBy, stored.Splits
	if req.PaidBy != nil {
		paidBy = *req.PaidBy
	}
	if req.Splits != nil {
		splits = req.Splits
	}

	var c validation.Collector
	checkPayerInSplits(&c, paidBy, splits)
	return c.Err()
}

func (v *Validator) computeSplits(c *validation.Collector, req *CreateExpenseRequest) ([]Split, bool) {
	strategy, err := v.splits.CreateFromString(strings.ToUpper(req.SplitType))
	if err != nil {
		c.Add("splitType", "must be one of EVEN, PERCENTAGE, EXACT")
		return nil, false
	}

	inputs := make([]split.SplitInput, len(req.Participants))
	for i, p := range req.Participants {
		p.MemberEmail = validation.NormalizeEmail(p.MemberEmail)
		inputs[i] = p
	}

	outputs, err := strategy.Calculate(req.Amount, inputs)
	if err != nil {
		c.Add("participants", err.Error())
		return nil, false
	}

	splits := make([]Split, len(outputs))
	for i, o := range outputs {
		splits[i] = Split{MemberEmail: o.MemberEmail, AmountOwed: o.AmountOwed}
	}
	return splits, true
}

func checkTitle(c *validation.Collector, title string) {
	n := validation.RuneLen(title)
	c.Check(n >= 2 && n <= 100, "title", "must be between 2 and 100 characters")
}

func checkDescription(c *validation.Collector, description string) {
	c.Check(validation.RuneLen(description) <= 500, "description", "must be at most 500 characters")
}

func checkAmount(c *validation.Collector, amount float64) {
	c.Check(amount > 0, "amount", "must be greater than 0")
}

func checkCurrency(c *validation.Collector, currency string) {
	n := validation.RuneLen(currency)
	c.Check(n >= 1 && n <= 3, "currency", "must be between 1 and 3 characters")
}

func checkPayer(c *validation.Collector, paidBy string) {
	c.Check(validation.IsEmail(paidBy), "paidBy", "must be a valid email")
}

func normalizeSplits(splits []Split) {
	for i := range splits {
		splits[i].MemberEmail = validation.NormalizeEmail(splits[i].MemberEmail)
	}
}

// checkSplits reports whether there are any lines to cross-check
func checkSplits(c *validation.Collector, splits []Split) bool {
	if len(splits) == 0 {
		c.Add("splits", "at least one split is required")
		return false
	}

	for i, s := range splits {
		if !validation.IsEmail(s.MemberEmail) {
			c.Add(fmt.Sprintf("splits[%d].memberEmail", i), "must be a valid email")
		}
		if s.AmountOwed <= 0 {
			c.Add(fmt.Sprintf("splits[%d].amountOwed", i), "must be greater than 0")
		}
	}
	return true
}

func checkSum(c *validation.Collector, amount float64, splits []Split) {
	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(decimal.NewFromFloat(s.AmountOwed))
	}
	expected := decimal.NewFromFloat(amount)
	if total.Sub(expected).Abs().GreaterThan(sumTolerance) {
		c.Add("splits", fmt.Sprintf("sum of splits (%s) must equal amount (%s)",
			total.StringFixed(2), expected.StringFixed(2)))
	}
}

func checkPayerInSplits(c *validation.Collector, paidBy string, splits []Split) {
	for _, s := range splits {
		if s.MemberEmail == paidBy {
			return
		}
	}
	c.Add("paidBy", "payer must be one of the split members")
}
