package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

const DefaultPaymentMethod = "cod"

// OrderPayload is assembled once per checkout action and is not modified
// after submission.
type OrderPayload struct {
	UserID            string          `json:"user_id"`
	Items             []CartItem      `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	CouponCode        string          `json:"coupon_code,omitempty"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	WalletAmount      decimal.Decimal `json:"wallet_amount"`
	PayableAmount     decimal.Decimal `json:"payable_amount"`
	DeliveryAddressID string          `json:"delivery_address_id"`
	PrescriptionURL   string          `json:"prescription_url,omitempty"`
	PaymentMethod     string          `json:"payment_method"`
}

// Order is a persisted payload.
type Order struct {
	ID     string      `json:"id"`
	Status OrderStatus `json:"status"`
	OrderPayload
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
