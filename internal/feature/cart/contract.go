// Package cart drives the shopping cart screen.
package cart

import (
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/feature"
)

// State is the cart screen state.
type State struct {
	Items          []domain.CartItem `json:"items"`
	TotalPrice     float64           `json:"totalPrice"`
	FormattedTotal string            `json:"formattedTotal"`
	ItemCount      int               `json:"itemCount"`
	Loading        bool              `json:"loading"`
	Error          string            `json:"error,omitempty"`
}

// InitialState is an empty cart.
func InitialState() State {
	return State{
		Items:          []domain.CartItem{},
		FormattedTotal: domain.FormatPrice(0),
	}
}

// Event is a user intent on the cart screen.
type Event interface{ isCartEvent() }

type (
	LoadCartItems struct{}

	UpdateQuantity struct {
		ProductID string `json:"productId" validate:"required"`
		Quantity  int    `json:"quantity"`
	}

	RemoveItem struct {
		ProductID string `json:"productId" validate:"required"`
	}

	ClearCart        struct{}
	DismissError     struct{}
	Checkout         struct{}
	ContinueShopping struct{}

	// itemsChanged carries a fresh snapshot from the cart watch.
	itemsChanged struct {
		items []domain.CartItem
	}
)

func (LoadCartItems) isCartEvent()    {}
func (UpdateQuantity) isCartEvent()   {}
func (RemoveItem) isCartEvent()       {}
func (ClearCart) isCartEvent()        {}
func (DismissError) isCartEvent()     {}
func (Checkout) isCartEvent()         {}
func (ContinueShopping) isCartEvent() {}
func (itemsChanged) isCartEvent()     {}

// Effect is a one-shot instruction for the view.
type Effect interface {
	feature.Effect
	isCartEffect()
}

type (
	ShowToast struct {
		Message string `json:"message"`
	}

	NavigateToCheckout struct{}
	NavigateToHome     struct{}
)

func (ShowToast) Kind() string          { return "show_toast" }
func (NavigateToCheckout) Kind() string { return "navigate_to_checkout" }
func (NavigateToHome) Kind() string     { return "navigate_to_home" }

func (ShowToast) isCartEffect()          {}
func (NavigateToCheckout) isCartEffect() {}
func (NavigateToHome) isCartEffect()     {}

// Events decodes wire events for this screen.
var Events = feature.Events[Event]{
	"load_cart_items":   feature.Static[Event](LoadCartItems{}),
	"update_quantity":   feature.Payload(func(e UpdateQuantity) Event { return e }),
	"remove_item":       feature.Payload(func(e RemoveItem) Event { return e }),
	"clear_cart":        feature.Static[Event](ClearCart{}),
	"dismiss_error":     feature.Static[Event](DismissError{}),
	"checkout":          feature.Static[Event](Checkout{}),
	"continue_shopping": feature.Static[Event](ContinueShopping{}),
}
