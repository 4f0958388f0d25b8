package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/Arsen1987144/joycity-marketplace/internal/catalog"
	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
	"github.com/Arsen1987144/joycity-marketplace/internal/service"
)

// CartView is the cart as the CLI reports it.
type CartView struct {
	Items     entity.Cart       `json:"items"`
	Lines     []entity.CartLine `json:"lines"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"itemCount"`
}

func (s *session) cartView(cart entity.Cart) CartView {
	lines, total := s.app.Carts.Lines(cart)
	return CartView{
		Items:     cart,
		Lines:     lines,
		Total:     total,
		ItemCount: service.TotalItemCount(cart),
	}
}

func (s *session) showCart(cart entity.Cart) error {
	view := s.cartView(cart)
	return s.out.Success(view, func(w io.Writer) {
		writeCart(w, view)
	})
}

// NewCartCommand creates the cart command and its subcommands.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cart",
		Short:         "Show the cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			cart, err := s.app.Carts.GetCart(cmd.Context(), s.scope)
			if err != nil {
				return s.storageError(err)
			}
			return s.showCart(cart)
		},
	}

	cmd.AddCommand(newCartAddCommand(rootOpts))
	cmd.AddCommand(newCartUpdateCommand(rootOpts))
	cmd.AddCommand(newCartRemoveCommand(rootOpts))
	cmd.AddCommand(newCartClearCommand(rootOpts))

	return cmd
}

func newCartAddCommand(rootOpts *RootOptions) *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:           "add <product-id>",
		Short:         "Add a product to the cart",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := parseInt(s.out, "id", args[0])
			if err != nil {
				return err
			}

			count, err := s.app.Carts.AddToCart(cmd.Context(), s.scope, id, quantity)
			switch {
			case errors.Is(err, catalog.ErrProductNotFound):
				return s.out.Fail(ExitFailure, ErrCodeNotFound, "товар не найден", err)
			case err != nil:
				return s.storageError(err)
			}
			if quantity < 1 {
				s.out.Notice("Количество должно быть не меньше 1, корзина не изменена.")
			} else {
				s.out.Notice("Добавлено в корзину. Товаров в корзине: %d", count)
			}

			cart, err := s.app.Carts.GetCart(cmd.Context(), s.scope)
			if err != nil {
				return s.storageError(err)
			}
			return s.showCart(cart)
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "how many to add")
	return cmd
}

func newCartUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "update <product-id> <quantity>",
		Short:         "Set the quantity of a cart entry",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := parseInt(s.out, "id", args[0])
			if err != nil {
				return err
			}
			quantity, err := parseInt(s.out, "quantity", args[1])
			if err != nil {
				return err
			}

			cart, err := s.app.Carts.UpdateQuantity(cmd.Context(), s.scope, id, quantity)
			if err != nil {
				return s.storageError(err)
			}
			switch {
			case quantity < 1:
				s.out.Notice("Количество должно быть не меньше 1, корзина не изменена.")
			case cart.Index(id) < 0:
				s.out.Notice("Товара %d нет в корзине.", id)
			}
			return s.showCart(cart)
		},
	}
}

func newCartRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <product-id>",
		Short:         "Remove a product from the cart",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := parseInt(s.out, "id", args[0])
			if err != nil {
				return err
			}

			cart, err := s.app.Carts.RemoveEntry(cmd.Context(), s.scope, id)
			if err != nil {
				return s.storageError(err)
			}
			return s.showCart(cart)
		},
	}
}

func newCartClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Empty the cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.app.Carts.ClearCart(cmd.Context(), s.scope); err != nil {
				return s.storageError(err)
			}
			return s.showCart(entity.Cart{})
		},
	}
}
