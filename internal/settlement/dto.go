package settlement

// SettlementResponse maps "debtor-creditor" to the amount owed
type SettlementResponse struct {
	Settlement map[string]float64 `json:"settlement"`
}

// CurrencySettlementResponse lists balances split by currency
type CurrencySettlementResponse struct {
	Settlement []Balance `json:"settlement"`
}
