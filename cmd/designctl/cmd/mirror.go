package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"photodesigner/internal/service"
)

var (
	pushAll     bool
	pushTimeout time.Duration
)

var pushCmd = &cobra.Command{
	Use:   "push [designId]",
	Short: "Push designs to the mirror targets",
	Long: `Push one design, or every design with --all, to each enabled mirror target.
Designs whose content did not change since the last push are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPush,
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List mirror targets",
	Args:  cobra.NoArgs,
	RunE:  runTargets,
}

func init() {
	pushCmd.Flags().BoolVar(&pushAll, "all", false, "push every design")
	pushCmd.Flags().DurationVar(&pushTimeout, "timeout", 2*time.Minute, "overall push timeout")
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(targetsCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	if pushAll == (len(args) == 1) {
		return fmt.Errorf("pass a design id or --all")
	}
	stack, err := openStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	var results []service.PushResult
	if pushAll {
		results, err = stack.Mirrors.PushAll(ctx)
	} else {
		results, err = stack.Mirrors.PushDesign(ctx, args[0])
	}
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No enabled mirror targets.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tDESIGN\tSTATUS\tERROR")
	failed := 0
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.TargetID, r.DesignID, r.Status, r.Error)
		if r.Status == service.PushStatusFailed {
			failed++
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d push(es) failed", failed)
	}
	return nil
}

func runTargets(cmd *cobra.Command, args []string) error {
	stack, err := openStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	targets, err := stack.Mirrors.ListTargets()
	if err != nil {
		return fmt.Errorf("list targets: %w", err)
	}
	if len(targets) == 0 {
		fmt.Println("No mirror targets configured.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDRIVER\tHOST\tENABLED")
	for _, t := range targets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", t.ID, t.Name, t.Driver, t.Host, t.Enabled)
	}
	return w.Flush()
}
