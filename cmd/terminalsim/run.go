package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/efreitasn/terminalsim/internal/domain"
)

func newRunCmd(rc *rootConfig) *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation headless for a fixed duration and print the blotters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if duration <= 0 {
				return fmt.Errorf("--duration must be positive")
			}
			cfg, logger, err := rc.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, duration)
			defer cancel()

			a := newApp(cfg, logger)
			if _, err := a.bootstrap.Run(); err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}

			a.scheduler.Start(ctx)
			<-ctx.Done()
			a.scheduler.Stop()

			return a.printSummary(cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 5*time.Second, "how long to run the simulation")
	return cmd
}

// printSummary writes the order, position and risk blotters as tables.
func (a *app) printSummary(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	byStatus := make(map[domain.OrderStatus]int)
	orders, err := a.orders.List(nil)
	if err != nil {
		return err
	}
	for _, o := range orders {
		byStatus[o.Status]++
	}
	fmt.Fprintf(tw, "ORDERS\t%d\n", len(orders))
	for _, s := range []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusLive,
		domain.OrderStatusPartiallyFilled,
		domain.OrderStatusFilled,
		domain.OrderStatusCancelled,
		domain.OrderStatusRejected,
	} {
		fmt.Fprintf(tw, "  %s\t%d\n", s, byStatus[s])
	}
	fmt.Fprintf(tw, "FILLS\t%d\n\n", a.stores.Fills.Len())

	fmt.Fprintln(tw, "SYMBOL\tACCOUNT\tQTY\tAVG\tUNREALIZED\tREALIZED\tEXPOSURE\tMARGIN")
	for _, p := range a.terminal.Positions() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.4f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			p.Symbol, p.AccountID, p.Qty, p.AvgPrice, p.UnrealizedPnl, p.RealizedPnl, p.GrossExposure, p.MarginUsed)
	}

	sum := a.risk.Summary()
	fmt.Fprintf(tw, "\nU-PNL\t%.2f\n", sum.TotalUnrealizedPnl)
	fmt.Fprintf(tw, "R-PNL\t%.2f\n", sum.TotalRealizedPnl)
	fmt.Fprintf(tw, "MARGIN UTILIZATION\t%.1f%%\n", sum.MarginUtilization*100)
	if sum.PnlWarning || sum.MarginWarning {
		fmt.Fprintln(tw, "WARNING\treview exposure before placing new size")
	}
	fmt.Fprintf(tw, "RISK SNAPSHOTS\t%d/%d\n", a.stores.Risk.Len(), a.stores.Risk.Capacity())
	return tw.Flush()
}
