package alerts

import "time"

// Task type constants
const (
	TaskEnvelopeReceipt = "email:envelope_receipt"
	TaskWinnerChosen    = "email:winner_chosen"
	TaskNotSelected     = "email:not_selected"
	TaskNoSale          = "email:no_sale"
)

// EmailEnvelope is the rendered message for any email-like alert.
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EnvelopeReceiptPayload confirms a buyer's submitted or updated offer.
type EnvelopeReceiptPayload struct {
	EnvelopeID string        `json:"envelope_id"`
	ListingID  string        `json:"listing_id"`
	BuyerID    string        `json:"buyer_id"`
	Email      string        `json:"email"`
	Amount     int64         `json:"amount"`
	Envelope   EmailEnvelope `json:"envelope"`
	SentAt     time.Time     `json:"sent_at"`
}

// WinnerChosenPayload tells the winning buyer their offer was accepted.
type WinnerChosenPayload struct {
	EnvelopeID string        `json:"envelope_id"`
	ListingID  string        `json:"listing_id"`
	BuyerID    string        `json:"buyer_id"`
	Email      string        `json:"email"`
	Amount     int64         `json:"amount"`
	Envelope   EmailEnvelope `json:"envelope"`
	SentAt     time.Time     `json:"sent_at"`
}

// NotSelectedPayload tells a losing buyer the listing went to someone else.
type NotSelectedPayload struct {
	EnvelopeID string        `json:"envelope_id"`
	ListingID  string        `json:"listing_id"`
	BuyerID    string        `json:"buyer_id"`
	Email      string        `json:"email"`
	Envelope   EmailEnvelope `json:"envelope"`
	SentAt     time.Time     `json:"sent_at"`
}

// NoSalePayload tells a buyer the listing ended without a winner.
type NoSalePayload struct {
	ListingID string        `json:"listing_id"`
	BuyerID   string        `json:"buyer_id"`
	Email     string        `json:"email"`
	Envelope  EmailEnvelope `json:"envelope"`
	SentAt    time.Time     `json:"sent_at"`
}
