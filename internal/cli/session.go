package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumeiq-app/lumeiq/internal/app/trip"
	"github.com/lumeiq-app/lumeiq/internal/daemon"
	"github.com/lumeiq-app/lumeiq/internal/domain"
)

func init() {
	sessionCmd.Flags().StringVar(&sessionOrigin, "origin", "", "Trip origin (required for commuting)")
	sessionCmd.Flags().StringVar(&sessionDestination, "destination", "", "Trip destination (required for commuting)")
	rootCmd.AddCommand(sessionCmd)
}

var (
	sessionOrigin      string
	sessionDestination string
)

var sessionCmd = &cobra.Command{
	Use:   "session ACTIVITY",
	Short: "Track an activity session (walking, cycling, commuting, jogging)",
	Long: `Run an activity timer. The session accrues CO2 savings and points
per minute until you press Ctrl-C, then records one impact event.`,
	Args: cobra.ExactArgs(1),
	RunE: runSession,
}

func runSession(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	kind := domain.ActivityKind(args[0])
	session, err := d.Sessions.Start(kind, sessionOrigin, sessionDestination)
	if err != nil {
		return err
	}
	fmt.Printf("%s session started. Press Ctrl-C to stop.\n", session.Kind)
	if rate, ok := trip.RateFor(kind); ok {
		fmt.Printf("  accruing %.0fg CO2 and %.1f pts per minute\n",
			rate.CO2PerMinute, rate.PointsPerMinute)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			elapsed := time.Since(session.StartedAt).Round(time.Second)
			fmt.Printf("  %s elapsed\n", elapsed)
		case <-sigCh:
			ev, state, err := d.Sessions.Stop()
			if err != nil {
				return err
			}
			fmt.Printf("\n%s\n", ev.Description)
			fmt.Printf("Awarded: %.0f points, %.0fg CO2 saved\n", ev.Points, ev.CarbonSavedGrams)
			fmt.Printf("Impact IQ: %d (%s)\n", state.IQ(), state.Tier())
			return nil
		}
	}
}
