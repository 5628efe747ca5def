package models

// CheckoutRequest is the client's checkout action.
type CheckoutRequest struct {
	UserID          string
	SessionID       string
	AddressID       string
	CouponCode      string
	UseWallet       bool
	PrescriptionURL string
	PaymentMethod   string
}

// CheckoutResult is returned after the order was persisted.
type CheckoutResult struct {
	OrderID string       `json:"order_id"`
	Payload OrderPayload `json:"order"`
}
