package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill types.
const (
	TypeOutpatient = "outpatient"
	TypeInpatient  = "inpatient"
	TypeEmergency  = "emergency"
	TypePharmacy   = "pharmacy"
	TypeLab        = "lab"
)

// Payment statuses. Derived, never set directly by callers.
const (
	StatusPending  = "pending"
	StatusPartial  = "partial"
	StatusPaid     = "paid"
	StatusRefunded = "refunded"
)

var validBillTypes = map[string]bool{
	TypeOutpatient: true, TypeInpatient: true, TypeEmergency: true,
	TypePharmacy: true, TypeLab: true,
}

var validPaymentMethods = map[string]bool{
	"cash": true, "card": true, "upi": true, "netbanking": true,
	"insurance": true, "cheque": true,
}

// LineItem is one charge on a bill. LineTotal is always Quantity * UnitPrice.
type LineItem struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	BillID      uuid.UUID       `db:"bill_id" json:"bill_id"`
	Sequence    int             `db:"sequence" json:"sequence"`
	Category    string          `db:"category" json:"category,omitempty"`
	Description string          `db:"description" json:"description"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	LineTotal   decimal.Decimal `db:"line_total" json:"line_total"`
}

// Payment is one recorded payment against a bill. Appended, never edited.
type Payment struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	BillID        uuid.UUID       `db:"bill_id" json:"bill_id"`
	Method        string          `db:"method" json:"method"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	TransactionID string          `db:"transaction_id" json:"transaction_id,omitempty"`
	PaidAt        time.Time       `db:"paid_at" json:"paid_at"`
}

// Bill is one invoice for a patient. Financial invariants:
//
//	totalAmount   = subtotal - discountAmount + (cgst + sgst + igst)
//	balanceAmount = totalAmount - amountPaid
//	paymentStatus = pending | partial | paid derived from amountPaid
//
// Bills are never deleted; refunds are a status.
type Bill struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Code            string          `db:"code" json:"code"`
	PatientID       uuid.UUID       `db:"patient_id" json:"patient_id"`
	AdmissionID     *uuid.UUID      `db:"admission_id" json:"admission_id,omitempty"`
	BillType        string          `db:"bill_type" json:"bill_type"`
	Items           []LineItem      `db:"-" json:"items"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountAmount  decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	DiscountReason  *string         `db:"discount_reason" json:"discount_reason,omitempty"`
	CGST            decimal.Decimal `db:"cgst" json:"cgst"`
	SGST            decimal.Decimal `db:"sgst" json:"sgst"`
	IGST            decimal.Decimal `db:"igst" json:"igst"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	AmountPaid      decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	BalanceAmount   decimal.Decimal `db:"balance_amount" json:"balance_amount"`
	PaymentStatus   string          `db:"payment_status" json:"payment_status"`
	Payments        []Payment       `db:"-" json:"payments"`
	Note            *string         `db:"note" json:"note,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// TaxTotal returns the sum of the three tax components.
func (b *Bill) TaxTotal() decimal.Decimal {
	return b.CGST.Add(b.SGST).Add(b.IGST)
}
