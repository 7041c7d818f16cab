package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// Payment is an append-only record of money received against a stay.
// Rows are never edited after insert except for the ReceiptIssued flag,
// which reporting flips once a paper receipt goes out.
type Payment struct {
	ID            int64         `json:"id"`
	StayID        int64         `json:"stay_id"`
	AmountCents   int64         `json:"amount_cents"`
	Method        PaymentMethod `json:"method"`
	ReceiptNumber string        `json:"receipt_number"`
	ReceiptIssued bool          `json:"receipt_issued"`
	PaidOn        time.Time     `json:"paid_on"`
}

type SettlementStatus string

const (
	SettlementStatusSettled  SettlementStatus = "SETTLED"
	SettlementStatusOwing    SettlementStatus = "OWING"
	SettlementStatusInCredit SettlementStatus = "IN_CREDIT"
)
