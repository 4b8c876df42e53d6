// Package catalog drives the product list screen.
package catalog

import (
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/feature"
)

// Phase is the load phase of the product list.
type Phase string

const (
	PhaseInitial Phase = "initial"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// State is the product list screen state.
type State struct {
	Phase      Phase            `json:"phase"`
	Products   []domain.Product `json:"products"`
	Refreshing bool             `json:"refreshing"`
	Message    string           `json:"message,omitempty"`
}

// InitialState is the state before the first load.
func InitialState() State {
	return State{Phase: PhaseInitial, Products: []domain.Product{}}
}

// Event is a user intent on the product list.
type Event interface{ isCatalogEvent() }

type (
	LoadProducts    struct{}
	RetryLoad       struct{}
	RefreshProducts struct{}
	DismissError    struct{}

	SelectProduct struct {
		ID string `json:"productId" validate:"required"`
	}
)

func (LoadProducts) isCatalogEvent()    {}
func (RetryLoad) isCatalogEvent()       {}
func (RefreshProducts) isCatalogEvent() {}
func (DismissError) isCatalogEvent()    {}
func (SelectProduct) isCatalogEvent()   {}

// Effect is a one-shot instruction for the view.
type Effect interface {
	feature.Effect
	isCatalogEffect()
}

type (
	ShowError struct {
		Message string `json:"message"`
	}

	ShowToast struct {
		Message string `json:"message"`
	}

	NavigateToProductDetail struct {
		ProductID string `json:"productId"`
	}
)

func (ShowError) Kind() string               { return "show_error" }
func (ShowToast) Kind() string               { return "show_toast" }
func (NavigateToProductDetail) Kind() string { return "navigate_to_product_detail" }

func (ShowError) isCatalogEffect()               {}
func (ShowToast) isCatalogEffect()               {}
func (NavigateToProductDetail) isCatalogEffect() {}

// Events decodes wire events for this screen.
var Events = feature.Events[Event]{
	"load_products":    feature.Static[Event](LoadProducts{}),
	"retry_load":       feature.Static[Event](RetryLoad{}),
	"refresh_products": feature.Static[Event](RefreshProducts{}),
	"dismiss_error":    feature.Static[Event](DismissError{}),
	"select_product":   feature.Payload(func(e SelectProduct) Event { return e }),
}
