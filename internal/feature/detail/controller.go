package detail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/mvi"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	msgLoadFailed   = "Unknown error occurred"
	msgAddFailed    = "Failed to add to cart"
	actionViewCart  = "View cart"
	msgAddedPattern = "%s added to cart"
)

// Store is the detail screen's dispatcher.
type Store = mvi.Store[State, Event, Effect]

// Controller handles detail events.
type Controller struct {
	*Store
	products repository.ProductRepository
	cart     repository.CartRepository
	logger   *slog.Logger
}

// NewController starts the detail store.
func NewController(ctx context.Context, products repository.ProductRepository, cart repository.CartRepository, logger *slog.Logger, opts ...mvi.Option) *Controller {
	c := &Controller{products: products, cart: cart, logger: logger}
	opts = append([]mvi.Option{mvi.WithName("detail"), mvi.WithLogger(logger)}, opts...)
	c.Store = mvi.New(ctx, InitialState(), c.handle, opts...)
	return c
}

func (c *Controller) handle(ctx context.Context, s *Store, event Event) error {
	switch e := event.(type) {
	case LoadProduct:
		return c.load(ctx, s, e.ID)
	case SetQuantity:
		s.Update(func(st State) State {
			st.Quantity = domain.ClampQuantity(e.N)
			return st
		})
	case AddToCart:
		return c.addToCart(ctx, s)
	case DismissError:
		s.Update(func(st State) State {
			st.Error = ""
			return st
		})
	case DismissSuccess:
		s.Update(func(st State) State {
			st.AddedToCart = false
			return st
		})
	case ViewCart:
		s.Emit(ctx, NavigateToCart{})
	case Back:
		s.Emit(ctx, NavigateBack{})
	}
	return nil
}

func (c *Controller) load(ctx context.Context, s *Store, id string) error {
	s.Update(func(st State) State {
		st.Product = nil
		st.FormattedPrice = ""
		st.Loading = true
		st.Error = ""
		st.Quantity = domain.MinQuantity
		st.AddedToCart = false
		return st
	})

	for res := range c.products.Product(ctx, id) {
		switch res.Status {
		case domain.StatusSuccess:
			p := res.Data
			s.Update(func(st State) State {
				st.Product = &p
				st.FormattedPrice = domain.FormatPrice(p.Price)
				st.Loading = false
				return st
			})
		case domain.StatusError:
			msg := apperrors.Message(res.Err, msgLoadFailed)
			s.Update(func(st State) State {
				st.Loading = false
				st.Error = msg
				return st
			})
		}
	}
	return ctx.Err()
}

func (c *Controller) addToCart(ctx context.Context, s *Store) error {
	st := s.State()
	if st.Product == nil {
		return nil
	}
	product, quantity := *st.Product, st.Quantity

	s.Update(func(st State) State {
		st.AddingToCart = true
		return st
	})

	if err := c.cart.AddToCart(ctx, product, quantity); err != nil {
		s.Update(func(st State) State {
			st.AddingToCart = false
			st.Error = msgAddFailed
			return st
		})
		return err
	}

	count, total, badgeErr := c.cartBadge(ctx)
	if badgeErr != nil {
		c.logger.WarnContext(ctx, "failed to refresh cart badge",
			slog.String("error", badgeErr.Error()),
		)
	}
	s.Update(func(st State) State {
		st.AddingToCart = false
		st.AddedToCart = true
		if badgeErr == nil {
			st.CartCount = count
			st.CartTotal = domain.FormatPrice(total)
		}
		return st
	})
	s.Emit(ctx, ShowSnackbar{
		Message:     fmt.Sprintf(msgAddedPattern, product.Name),
		ActionLabel: actionViewCart,
	})
	return nil
}

func (c *Controller) cartBadge(ctx context.Context) (int, float64, error) {
	count, err := c.cart.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	total, err := c.cart.Total(ctx)
	if err != nil {
		return 0, 0, err
	}
	return count, total, nil
}
