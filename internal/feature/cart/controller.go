package cart

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/mvi"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	msgQuantityUpdated = "Quantity updated"
	msgItemRemoved     = "Item removed from cart"
	msgCartCleared     = "Cart cleared"
	msgCartEmpty       = "Your cart is empty"
)

// Store is the cart screen's dispatcher.
type Store = mvi.Store[State, Event, Effect]

// Controller handles cart events. Cart contents arrive from a background
// watch that feeds snapshots back through the store, so state is only ever
// written on the consumer goroutine.
type Controller struct {
	*Store
	cart   repository.CartRepository
	logger *slog.Logger

	// stopWatch is only touched by the consumer goroutine.
	stopWatch context.CancelFunc
}

// NewController starts the cart store.
func NewController(ctx context.Context, cart repository.CartRepository, logger *slog.Logger, opts ...mvi.Option) *Controller {
	c := &Controller{cart: cart, logger: logger}
	opts = append([]mvi.Option{mvi.WithName("cart"), mvi.WithLogger(logger)}, opts...)
	c.Store = mvi.New(ctx, InitialState(), c.handle, opts...)
	return c
}

func (c *Controller) handle(ctx context.Context, s *Store, event Event) error {
	switch e := event.(type) {
	case LoadCartItems:
		c.startWatch(ctx, s)
	case itemsChanged:
		items := e.items
		if items == nil {
			items = []domain.CartItem{}
		}
		total := domain.CartTotal(items)
		s.Update(func(st State) State {
			st.Items = items
			st.TotalPrice = total
			st.FormattedTotal = domain.FormatPrice(total)
			st.ItemCount = domain.CartCount(items)
			st.Loading = false
			return st
		})
	case UpdateQuantity:
		return c.mutate(ctx, s, msgQuantityUpdated, func() error {
			return c.cart.UpdateQuantity(ctx, e.ProductID, domain.ClampQuantity(e.Quantity))
		})
	case RemoveItem:
		return c.mutate(ctx, s, msgItemRemoved, func() error {
			return c.cart.Remove(ctx, e.ProductID)
		})
	case ClearCart:
		return c.mutate(ctx, s, msgCartCleared, func() error {
			return c.cart.Clear(ctx)
		})
	case DismissError:
		s.Update(func(st State) State {
			st.Error = ""
			return st
		})
	case Checkout:
		if len(s.State().Items) == 0 {
			s.Emit(ctx, ShowToast{Message: msgCartEmpty})
			return nil
		}
		s.Emit(ctx, NavigateToCheckout{})
	case ContinueShopping:
		s.Emit(ctx, NavigateToHome{})
	}
	return nil
}

// startWatch (re)starts the single background watch of the cart stream.
func (c *Controller) startWatch(ctx context.Context, s *Store) {
	if c.stopWatch != nil {
		c.stopWatch()
	}
	watchCtx, cancel := context.WithCancel(ctx)
	c.stopWatch = cancel

	s.Update(func(st State) State {
		st.Loading = true
		st.Error = ""
		return st
	})

	items := c.cart.Items(watchCtx)
	go func() {
		for snapshot := range items {
			if err := s.Submit(itemsChanged{items: snapshot}); err != nil {
				cancel()
				return
			}
		}
	}()
}

func (c *Controller) mutate(ctx context.Context, s *Store, success string, op func() error) error {
	if err := op(); err != nil {
		msg := apperrors.Message(err, "cart update failed")
		s.Update(func(st State) State {
			st.Error = msg
			return st
		})
		return err
	}
	s.Emit(ctx, ShowToast{Message: success})
	return nil
}
