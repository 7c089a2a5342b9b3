package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"photodesigner/internal/secret"
	"photodesigner/internal/service"
)

var (
	// Global flags
	dataDir string
)

var rootCmd = &cobra.Command{
	Use:   "designctl",
	Short: "Headless tools for Photo Designer",
	Long: `Inspect, import, export and mirror photobook and postcard designs without
the desktop app. Commands share the app's database.

Examples:
  designctl designs                        # List every design
  designctl objects <designId>             # Print the objects of a design
  designctl import page.json               # Import a design document
  designctl push --all                     # Push every design to the mirrors
  designctl mcp                            # Serve MCP on stdin/stdout`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default $PHOTODESIGNER_DATA_DIR or ~/.local/share/photodesigner)")
}

// openStack opens the services on the selected data directory.
func openStack() (*service.Stack, error) {
	dir := dataDir
	if dir == "" {
		dir = service.DefaultDataDir()
	}
	stack, err := service.OpenStack(dir, secret.Default(), service.NopEmitter{})
	if err != nil {
		return nil, fmt.Errorf("open data dir %s: %w", dir, err)
	}
	return stack, nil
}
