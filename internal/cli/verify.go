package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumeiq-app/lumeiq/internal/daemon"
	"github.com/lumeiq-app/lumeiq/internal/domain"
)

func init() {
	verifyCmd.Flags().StringVar(&verifyAction, "action", "", "Action being proven (eco-purchase, transit-proof, recycling-proof, plant-based, thrift, repair, minimal)")
	verifyCmd.MarkFlagRequired("action")
	rootCmd.AddCommand(verifyCmd)
}

var verifyAction string

var verifyCmd = &cobra.Command{
	Use:   "verify IMAGE",
	Short: "Verify a proof photo and record the impact",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	img, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	out, err := d.Pipeline.Verify(context.Background(), img,
		domain.ActionTag(verifyAction), func(status string) {
			fmt.Printf("  %s\n", status)
		})
	if err != nil {
		return err
	}

	fmt.Printf("\nResult: %s\n", out.Result.Stage)
	if out.Result.Reason != "" {
		fmt.Printf("Reason: %s\n", out.Result.Reason)
	}
	if len(out.Result.MatchedLabels) > 0 {
		fmt.Printf("Matched: %s\n", strings.Join(out.Result.MatchedLabels, ", "))
	}
	if out.Result.Accepted {
		fmt.Printf("Confidence: %d%%\n", out.Result.Confidence)
	}
	if out.Event != nil {
		fmt.Printf("Awarded: %.0f points, %.0fg CO2 saved\n",
			out.Event.Points, out.Event.CarbonSavedGrams)
	}
	if out.State != nil {
		fmt.Printf("Impact IQ: %d (%s)\n", out.State.IQ(), out.State.Tier())
	}
	return nil
}
