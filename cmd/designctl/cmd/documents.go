package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"photodesigner/internal/inbox"
)

var exportOutput string

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import design documents",
	Long: `Create or replace designs from JSON design documents. Documents that name
no project are filed under the Inbox project.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <designId>",
	Short: "Write the design document of a design",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	stack, err := openStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	ctx := context.Background()
	for _, path := range args {
		doc, err := inbox.ReadDocument(path)
		if err != nil {
			return err
		}
		d, err := stack.Designs.ImportDocument(ctx, doc)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		fmt.Printf("Imported %s as %q (%s)\n", path, d.Name, d.ID)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	stack, err := openStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	doc, err := stack.Designs.ExportDocument(args[0])
	if err != nil {
		return fmt.Errorf("export design: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if exportOutput == "" {
		_, err = fmt.Println(string(data))
		return err
	}
	return os.WriteFile(exportOutput, data, 0644)
}
