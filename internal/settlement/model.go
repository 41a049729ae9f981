package settlement

// Balance is what one member owes another in a single currency
type Balance struct {
	Debtor   string  `json:"debtor"`
	Creditor string  `json:"creditor"`
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}
