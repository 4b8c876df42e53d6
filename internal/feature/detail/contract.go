// Package detail drives the product detail screen.
package detail

import (
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/feature"
)

// State is the product detail screen state.
type State struct {
	Product        *domain.Product `json:"product"`
	Quantity       int             `json:"quantity"`
	FormattedPrice string          `json:"formattedPrice,omitempty"`
	Loading        bool            `json:"loading"`
	Error          string          `json:"error,omitempty"`
	AddingToCart   bool            `json:"addingToCart"`
	AddedToCart    bool            `json:"addedToCart"`

	// CartCount and CartTotal feed the cart badge. They are refreshed after
	// every successful AddToCart.
	CartCount int    `json:"cartCount"`
	CartTotal string `json:"cartTotal,omitempty"`
}

// InitialState has no product and a quantity of one.
func InitialState() State {
	return State{Quantity: domain.MinQuantity}
}

// Event is a user intent on the detail screen.
type Event interface{ isDetailEvent() }

type (
	LoadProduct struct {
		ID string `json:"productId" validate:"required"`
	}

	SetQuantity struct {
		N int `json:"quantity"`
	}

	AddToCart      struct{}
	DismissError   struct{}
	DismissSuccess struct{}
	ViewCart       struct{}
	Back           struct{}
)

func (LoadProduct) isDetailEvent()    {}
func (SetQuantity) isDetailEvent()    {}
func (AddToCart) isDetailEvent()      {}
func (DismissError) isDetailEvent()   {}
func (DismissSuccess) isDetailEvent() {}
func (ViewCart) isDetailEvent()       {}
func (Back) isDetailEvent()           {}

// Effect is a one-shot instruction for the view.
type Effect interface {
	feature.Effect
	isDetailEffect()
}

type (
	ShowSnackbar struct {
		Message     string `json:"message"`
		ActionLabel string `json:"actionLabel,omitempty"`
	}

	NavigateToCart struct{}
	NavigateBack   struct{}
)

func (ShowSnackbar) Kind() string   { return "show_snackbar" }
func (NavigateToCart) Kind() string { return "navigate_to_cart" }
func (NavigateBack) Kind() string   { return "navigate_back" }

func (ShowSnackbar) isDetailEffect()   {}
func (NavigateToCart) isDetailEffect() {}
func (NavigateBack) isDetailEffect()   {}

// Events decodes wire events for this screen.
var Events = feature.Events[Event]{
	"load_product":    feature.Payload(func(e LoadProduct) Event { return e }),
	"set_quantity":    feature.Payload(func(e SetQuantity) Event { return e }),
	"add_to_cart":     feature.Static[Event](AddToCart{}),
	"dismiss_error":   feature.Static[Event](DismissError{}),
	"dismiss_success": feature.Static[Event](DismissSuccess{}),
	"view_cart":       feature.Static[Event](ViewCart{}),
	"back":            feature.Static[Event](Back{}),
}
