package catalog

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/mvi"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	msgLoadFailed      = "Unable to load products"
	msgRefreshFailed   = "Refresh failed"
	msgRefreshComplete = "Refresh complete"
)

// Store is the catalog screen's dispatcher.
type Store = mvi.Store[State, Event, Effect]

// Controller handles catalog events against the product repository.
type Controller struct {
	*Store
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewController starts the catalog store. It does not load on its own; submit
// LoadProducts when the screen opens.
func NewController(ctx context.Context, products repository.ProductRepository, logger *slog.Logger, opts ...mvi.Option) *Controller {
	c := &Controller{products: products, logger: logger}
	opts = append([]mvi.Option{mvi.WithName("catalog"), mvi.WithLogger(logger)}, opts...)
	c.Store = mvi.New(ctx, InitialState(), c.handle, opts...)
	return c
}

func (c *Controller) handle(ctx context.Context, s *Store, event Event) error {
	switch e := event.(type) {
	case LoadProducts, RetryLoad:
		return c.load(ctx, s)
	case RefreshProducts:
		return c.refresh(ctx, s)
	case SelectProduct:
		s.Emit(ctx, NavigateToProductDetail{ProductID: e.ID})
	case DismissError:
		s.SetState(InitialState())
		return c.load(ctx, s)
	}
	return nil
}

func (c *Controller) load(ctx context.Context, s *Store) error {
	s.Update(func(st State) State {
		st.Phase = PhaseLoading
		st.Message = ""
		return st
	})

	for res := range c.products.Products(ctx) {
		switch res.Status {
		case domain.StatusLoading:
			s.Update(func(st State) State {
				st.Phase = PhaseLoading
				return st
			})
		case domain.StatusSuccess:
			s.SetState(State{Phase: PhaseSuccess, Products: res.Data})
		case domain.StatusError:
			msg := apperrors.Message(res.Err, msgLoadFailed)
			c.logger.WarnContext(ctx, "product list load failed", slog.String("error", res.Err.Error()))
			s.SetState(State{Phase: PhaseError, Products: []domain.Product{}, Message: msg})
			s.Emit(ctx, ShowError{Message: msg})
		}
	}
	return ctx.Err()
}

// refresh keeps the current list visible while reloading.
func (c *Controller) refresh(ctx context.Context, s *Store) error {
	s.Update(func(st State) State {
		if st.Phase == PhaseSuccess {
			st.Refreshing = true
		}
		return st
	})

	var (
		refreshed bool
		failed    error
	)
	for res := range c.products.Products(ctx) {
		switch res.Status {
		case domain.StatusSuccess:
			refreshed = true
			s.SetState(State{Phase: PhaseSuccess, Products: res.Data, Refreshing: true})
		case domain.StatusError:
			failed = res.Err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.Update(func(st State) State {
		st.Refreshing = false
		return st
	})

	switch {
	case failed != nil:
		s.Emit(ctx, ShowToast{Message: msgRefreshFailed + ": " + apperrors.Message(failed, "unknown error")})
	case refreshed:
		s.Emit(ctx, ShowToast{Message: msgRefreshComplete})
	}
	return nil
}
