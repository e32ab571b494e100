package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lumeiq-app/lumeiq/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current impact score and tier",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	state, err := d.Scores.State()
	if err != nil {
		return err
	}

	fmt.Printf("Impact IQ: %d (%s)\n\n", state.IQ(), state.Tier())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PILLAR\tSCORE")
	fmt.Fprintf(w, "Environmental\t%.1f\n", state.Pillars.Environmental)
	fmt.Fprintf(w, "Social\t%.1f\n", state.Pillars.Social)
	fmt.Fprintf(w, "Economic\t%.1f\n", state.Pillars.Economic)
	w.Flush()

	fmt.Printf("\nCO2 saved: %.1f kg\n", state.TotalCarbonSavedGrams/1000)
	fmt.Printf("Points: %.0f\n", state.TotalPoints)
	fmt.Printf("Green credits: %.2f\n", state.GreenCredits)
	fmt.Printf("Actions: %d purchases, %d transits, %d verifications\n",
		state.PurchaseCount, state.TransitCount, state.VerificationCount)
	return nil
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent impact events",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	state, err := d.Scores.State()
	if err != nil {
		return err
	}
	if len(state.History) == 0 {
		fmt.Println("No impact events yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tKIND\tDESCRIPTION\tPOINTS\tCO2 SAVED")
	for _, ev := range state.History {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%.0fg\n",
			ev.Timestamp.Format("Jan 02 15:04"),
			ev.Kind, ev.Description, ev.Points, ev.CarbonSavedGrams)
	}
	return w.Flush()
}
