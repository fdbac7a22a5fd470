package dto

import (
	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/domain"
	"github.com/agentpay/agentledger/internal/usecase"
)

// DepositRequest funds an account. Account falls back to the configured
// agent wallet when omitted.
type DepositRequest struct {
	Account    string          `json:"account,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	UserWallet string          `json:"userWallet,omitempty"`
}

// SpendRequest is a raw metered spend without an attached operation.
type SpendRequest struct {
	Account     string          `json:"account,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// OrderItemRequest is a single order line as sent by the agent.
type OrderItemRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity,omitempty"`
}

// ChargeParamsRequest carries the operation-specific inputs of a charge.
type ChargeParamsRequest struct {
	Query string `json:"query,omitempty"`

	PhoneNumber  string `json:"phoneNumber,omitempty"`
	Purpose      string `json:"purpose,omitempty"`
	BusinessName string `json:"businessName,omitempty"`

	ImageURL string `json:"imageUrl,omitempty"`

	Restaurant      string             `json:"restaurant,omitempty"`
	Items           []OrderItemRequest `json:"items,omitempty"`
	TotalCost       decimal.Decimal    `json:"totalCost,omitempty"`
	DeliveryAddress string             `json:"deliveryAddress,omitempty"`
	StoreID         string             `json:"storeId,omitempty"`
	ProductIDs      []string           `json:"productIds,omitempty"`
}

// ChargeRequest asks for a paid operation to be executed and charged.
type ChargeRequest struct {
	Account   string              `json:"account,omitempty"`
	Operation string              `json:"operation"`
	Params    ChargeParamsRequest `json:"params"`
}

// ToUseCaseParams converts the request params to use case input.
func (r ChargeParamsRequest) ToUseCaseParams() usecase.ChargeParams {
	items := make([]domain.OrderItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.OrderItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
	}
	return usecase.ChargeParams{
		Query:           r.Query,
		PhoneNumber:     r.PhoneNumber,
		Purpose:         r.Purpose,
		BusinessName:    r.BusinessName,
		ImageURL:        r.ImageURL,
		Restaurant:      r.Restaurant,
		Items:           items,
		TotalCost:       r.TotalCost,
		DeliveryAddress: r.DeliveryAddress,
		StoreID:         r.StoreID,
		ProductIDs:      r.ProductIDs,
	}
}

// QuoteRequest asks for a delivery fee estimate.
type QuoteRequest struct {
	Account string `json:"account,omitempty"`

	PickupAddress      string `json:"pickupAddress"`
	PickupBusinessName string `json:"pickupBusinessName"`
	PickupPhoneNumber  string `json:"pickupPhoneNumber"`
	PickupInstructions string `json:"pickupInstructions,omitempty"`

	DropoffAddress      string `json:"dropoffAddress"`
	DropoffBusinessName string `json:"dropoffBusinessName,omitempty"`
	DropoffPhoneNumber  string `json:"dropoffPhoneNumber"`
	DropoffInstructions string `json:"dropoffInstructions,omitempty"`

	OrderValue decimal.Decimal `json:"orderValue"`
	TipAmount  decimal.Decimal `json:"tipAmount,omitempty"`
}

// ToTripDetails converts the request to use case input.
func (r QuoteRequest) ToTripDetails() usecase.TripDetails {
	return usecase.TripDetails{
		PickupAddress:       r.PickupAddress,
		PickupBusinessName:  r.PickupBusinessName,
		PickupPhoneNumber:   r.PickupPhoneNumber,
		PickupInstructions:  r.PickupInstructions,
		DropoffAddress:      r.DropoffAddress,
		DropoffBusinessName: r.DropoffBusinessName,
		DropoffPhoneNumber:  r.DropoffPhoneNumber,
		DropoffInstructions: r.DropoffInstructions,
		OrderValue:          r.OrderValue,
		Tip:                 r.TipAmount,
	}
}
