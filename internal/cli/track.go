package cli

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
	"github.com/Arsen1987144/joycity-marketplace/internal/service"
)

// TrackingView is the current order with its derived delivery state.
type TrackingView struct {
	Order     entity.Order          `json:"order"`
	Steps     []entity.TrackingStep `json:"steps"`
	Countdown entity.Countdown      `json:"countdown"`
}

// NewTrackCommand creates the track command.
func NewTrackCommand(rootOpts *RootOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Show delivery progress of the current order",
		Long: `Show the delivery milestones of the current order and the time left
until delivery. With --watch the countdown is updated every second until
the order is delivered or q is pressed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			order, found, err := s.app.Tracking.LoadCurrentOrder(cmd.Context(), s.scope)
			if err != nil && !errors.Is(err, service.ErrMalformedOrder) {
				return s.storageError(err)
			}
			if !found {
				return s.out.Fail(ExitFailure, ErrCodeNotFound, "Заказ не найден. Пожалуйста, оформите заказ.", nil)
			}

			if watch && s.out.Format == "text" {
				return runWatch(cmd, s, order)
			}

			view := TrackingView{
				Order:     order,
				Steps:     s.app.Tracking.DeriveSteps(order),
				Countdown: s.app.Tracking.RemainingTime(order),
			}
			return s.out.Success(view, func(w io.Writer) {
				writeTracking(w, view)
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep updating the countdown")
	return cmd
}

// runWatch drives the countdown view from TrackingService.Watch.
func runWatch(cmd *cobra.Command, s *session, order entity.Order) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p := tea.NewProgram(
		newCountdownModel(order, s.app.Tracking),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	go func() {
		err := s.app.Tracking.Watch(ctx, order, func(c entity.Countdown) {
			p.Send(countdownMsg(c))
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			p.Send(watchErrMsg{err})
		}
	}()

	final, err := p.Run()
	cancel()
	if err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeStorage, "ошибка терминала", err)
	}
	if m, ok := final.(countdownModel); ok && m.err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeStorage, "отслеживание прервано", m.err)
	}
	return nil
}
