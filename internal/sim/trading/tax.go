package trading

// ProceedsAfterTax returns what a seller keeps from amount currency units
// at the given tax rate (percent, 0..100). Integer arithmetic throughout:
// the rate-zero path is exact and rounding never drifts. Rounding the tax
// up favors the house, rounding down favors the seller.
func ProceedsAfterTax(amount, rate int, roundUp bool) int {
	if rate == 0 {
		return amount
	}
	var tax int
	if roundUp {
		tax = (amount*rate + 99) / 100
	} else {
		tax = amount * rate / 100
	}
	return amount - tax
}

// ProceedsAfterTax applies the handler's configured tax policy.
func (h *Handler) ProceedsAfterTax(amount int) int {
	return ProceedsAfterTax(amount, h.cfg.TaxRate, h.cfg.TaxRoundUp)
}
