package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lumeiq-app/lumeiq/internal/daemon"
	"github.com/lumeiq-app/lumeiq/internal/domain"
)

func init() {
	rootCmd.AddCommand(routeCmd)
}

var routeCmd = &cobra.Command{
	Use:   "route FROM TO",
	Short: "Compare the carbon footprint of every way to make a trip",
	Long: `Compare transport modes for a journey. FROM and TO are "lat,lng"
coordinate pairs, for example: lumeiq route 12.9757,77.6050 12.9352,77.6245`,
	Args: cobra.ExactArgs(2),
	RunE: runRoute,
}

func runRoute(cmd *cobra.Command, args []string) error {
	from, err := parsePosition(args[0])
	if err != nil {
		return fmt.Errorf("FROM: %w", err)
	}
	to, err := parsePosition(args[1])
	if err != nil {
		return fmt.Errorf("TO: %w", err)
	}

	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	cmp, err := d.Planner.Compare(context.Background(), from, to)
	if err != nil {
		return err
	}

	fmt.Printf("%s → %s\n\n", cmp.From, cmp.To)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tDISTANCE\tTIME\tCO2\tSAVED\tCOST")
	for _, c := range cmp.Candidates {
		marker := ""
		if cmp.Greenest != nil && c.Mode == cmp.Greenest.Mode {
			marker = " *"
		}
		fmt.Fprintf(w, "%s%s\t%.1f km\t%.0f min\t%.0fg\t%.0fg\t₹%.0f\n",
			c.Mode, marker, c.DistanceKm, c.DurationMin, c.CO2Grams, c.CO2SavedGrams, c.CostINR)
	}
	w.Flush()

	if cmp.Greenest != nil {
		fmt.Printf("\nGreenest practical option: %s\n", cmp.Greenest.Mode)
	}
	return nil
}

// parsePosition parses a "lat,lng" pair.
func parsePosition(s string) (domain.Position, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return domain.Position{}, fmt.Errorf("expected lat,lng, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return domain.Position{}, fmt.Errorf("bad latitude %q", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.Position{}, fmt.Errorf("bad longitude %q", parts[1])
	}
	return domain.Position{Lat: lat, Lng: lng}, nil
}
