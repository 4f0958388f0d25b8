package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
)

// CheckoutResult reports what checkout did.
type CheckoutResult struct {
	Placed bool          `json:"placed"`
	Order  *entity.Order `json:"order,omitempty"`
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order from the cart",
		Long: `Turn the cart into the current order, replacing any earlier one, and
empty the cart. An empty cart places nothing.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			order, placed, err := s.app.Orders.PlaceOrder(cmd.Context(), s.scope)
			if err != nil && !placed {
				return s.storageError(err)
			}
			if err != nil {
				slog.Warn("Order placed but cart kept", "order_id", order.ID, "err", err)
			}

			if !placed {
				return s.out.Success(CheckoutResult{}, func(w io.Writer) {
					fmt.Fprintln(w, "Корзина пуста, заказ не оформлен.")
				})
			}
			return s.out.Success(CheckoutResult{Placed: true, Order: &order}, func(w io.Writer) {
				fmt.Fprintf(w, "Заказ %s оформлен.\n", order.ID)
				fmt.Fprintf(w, "Дата заказа: %s\n", formatDate(order.OrderDate))
				fmt.Fprintf(w, "Ожидаемая дата доставки: %s\n", formatDate(order.ExpectedDeliveryDate))
			})
		},
	}
}
