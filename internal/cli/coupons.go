package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lumeiq-app/lumeiq/internal/daemon"
)

func init() {
	couponsCmd.Flags().StringVar(&redeemCode, "redeem", "", "Redeem a coupon by code")
	rootCmd.AddCommand(couponsCmd)
	rootCmd.AddCommand(tripsCmd)
}

var redeemCode string

var couponsCmd = &cobra.Command{
	Use:   "coupons",
	Short: "List reward coupons, or redeem one",
	RunE:  runCoupons,
}

func runCoupons(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	if redeemCode != "" {
		coupon, err := d.Rewards.Redeem(redeemCode)
		if err != nil {
			return err
		}
		fmt.Printf("Redeemed %s: %s\n", coupon.Code, coupon.Title)
		return nil
	}

	entries, err := d.Rewards.Catalog()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tREWARD\tNEEDS\tSTATUS")
	for _, e := range entries {
		status := "locked"
		switch {
		case e.Redeemed:
			status = "redeemed"
		case e.Unlocked:
			status = "available"
		}
		fmt.Fprintf(w, "%s\t%s\tIQ %d (%s)\t%s\n", e.Code, e.Title, e.MinIQ, e.Tier, status)
	}
	return w.Flush()
}

var tripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "List completed live-tracked trips",
	RunE:  runTrips,
}

func runTrips(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	trips, err := d.DB.ListTrips(50)
	if err != nil {
		return err
	}
	if len(trips) == 0 {
		fmt.Println("No trips logged yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tMODE\tROUTE\tDISTANCE\tCO2 SAVED\tMONEY SAVED")
	for _, tr := range trips {
		fmt.Fprintf(w, "%s\t%s\t%s → %s\t%.1f km\t%.0fg\t₹%.0f\n",
			tr.EndedAt.Format("Jan 02 15:04"), tr.Mode, tr.From, tr.To,
			tr.DistanceKm, tr.CarbonSavedGrams, tr.MoneySavedINR)
	}
	return w.Flush()
}
