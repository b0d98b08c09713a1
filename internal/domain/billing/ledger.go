package billing

import (
	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/platform/apperr"
)

var hundred = decimal.NewFromInt(100)

// ItemInput is one line item supplied by a caller composing a bill.
type ItemInput struct {
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// composeItems validates the raw inputs and returns the line items with
// sequence numbers and line totals filled in, plus the subtotal.
func composeItems(inputs []ItemInput) ([]LineItem, decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, decimal.Zero, apperr.Validation("bill requires at least one line item")
	}
	items := make([]LineItem, 0, len(inputs))
	subtotal := decimal.Zero
	for i, in := range inputs {
		if in.Description == "" {
			return nil, decimal.Zero, apperr.Validation("item %d: description is required", i+1)
		}
		if in.Quantity < 1 {
			return nil, decimal.Zero, apperr.Validation("item %d: quantity must be at least 1", i+1)
		}
		if in.UnitPrice.IsNegative() {
			return nil, decimal.Zero, apperr.Validation("item %d: unit price cannot be negative", i+1)
		}
		total := in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
		items = append(items, LineItem{
			Sequence:    i + 1,
			Category:    in.Category,
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			LineTotal:   total,
		})
		subtotal = subtotal.Add(total)
	}
	return items, subtotal, nil
}

// recalculate re-derives every computed field from the authoritative inputs.
// Call after any mutation of items, discount, taxes or payments.
func (b *Bill) recalculate() error {
	subtotal := decimal.Zero
	for _, it := range b.Items {
		subtotal = subtotal.Add(it.LineTotal)
	}
	b.Subtotal = subtotal

	discount := b.DiscountAmount
	if b.DiscountPercent.IsPositive() {
		discount = subtotal.Mul(b.DiscountPercent).Div(hundred)
		b.DiscountAmount = discount
	}

	total := subtotal.Sub(discount).Add(b.TaxTotal())
	if total.IsNegative() {
		return apperr.Validation("discount exceeds bill amount")
	}
	b.TotalAmount = total

	paid := decimal.Zero
	for _, p := range b.Payments {
		paid = paid.Add(p.Amount)
	}
	b.AmountPaid = paid
	b.BalanceAmount = total.Sub(paid)

	if b.PaymentStatus != StatusRefunded {
		b.PaymentStatus = derivePaymentStatus(total, paid)
	}
	return nil
}

func derivePaymentStatus(total, paid decimal.Decimal) string {
	switch {
	case paid.IsZero():
		return StatusPending
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	default:
		return StatusPartial
	}
}

// applyDiscount sets the bill discount. Exactly one of percent or amount is
// authoritative: a percentage discount clears any stored fixed amount and
// vice versa.
func (b *Bill) applyDiscount(percent, amount decimal.Decimal, reason string) error {
	if b.PaymentStatus == StatusPaid || b.PaymentStatus == StatusRefunded {
		return apperr.InvalidState("cannot apply discount to a %s bill", b.PaymentStatus)
	}
	if percent.IsNegative() || amount.IsNegative() {
		return apperr.Validation("discount cannot be negative")
	}
	if percent.GreaterThan(hundred) {
		return apperr.Validation("discount percent cannot exceed 100")
	}
	if percent.IsPositive() {
		b.DiscountPercent = percent
		b.DiscountAmount = decimal.Zero
	} else {
		b.DiscountPercent = decimal.Zero
		b.DiscountAmount = amount
	}
	if reason != "" {
		b.DiscountReason = &reason
	}
	return b.recalculate()
}

// applyPayment appends a payment and re-derives paid, balance and status.
// Overpayment is rejected so the balance never goes negative.
func (b *Bill) applyPayment(p Payment) error {
	if b.PaymentStatus == StatusRefunded {
		return apperr.InvalidState("cannot pay a refunded bill")
	}
	if !validPaymentMethods[p.Method] {
		return apperr.Validation("invalid payment method %q", p.Method)
	}
	if !p.Amount.IsPositive() {
		return apperr.Validation("payment amount must be positive")
	}
	if p.Amount.GreaterThan(b.BalanceAmount) {
		return apperr.Validation("payment %s exceeds outstanding balance %s", p.Amount, b.BalanceAmount)
	}
	b.Payments = append(b.Payments, p)
	return b.recalculate()
}

// markRefunded moves a bill with at least one payment to refunded.
func (b *Bill) markRefunded() error {
	if b.PaymentStatus == StatusRefunded {
		return apperr.InvalidState("bill is already refunded")
	}
	if b.AmountPaid.IsZero() {
		return apperr.InvalidState("nothing to refund on an unpaid bill")
	}
	b.PaymentStatus = StatusRefunded
	return nil
}
