package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var projectFilter string

var designsCmd = &cobra.Command{
	Use:   "designs",
	Short: "List designs",
	Long:  `List the designs of one project, or of every project, in page order.`,
	Args:  cobra.NoArgs,
	RunE:  runDesigns,
}

var objectsCmd = &cobra.Command{
	Use:   "objects <designId>",
	Short: "Print the objects of a design as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runObjects,
}

func init() {
	designsCmd.Flags().StringVarP(&projectFilter, "project", "p", "", "only list designs of this project")
	rootCmd.AddCommand(designsCmd)
	rootCmd.AddCommand(objectsCmd)
}

func runDesigns(cmd *cobra.Command, args []string) error {
	stack, err := openStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	designs, err := stack.Designs.ListDesigns(projectFilter)
	if err != nil {
		return fmt.Errorf("list designs: %w", err)
	}
	if len(designs) == 0 {
		fmt.Println("No designs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROJECT\tNAME\tKIND\tCANVAS")
	for _, d := range designs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%gx%g\n", d.ID, d.ProjectID, d.Name, d.Kind, d.CanvasWidth, d.CanvasHeight)
	}
	return w.Flush()
}

func runObjects(cmd *cobra.Command, args []string) error {
	stack, err := openStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	st, err := stack.Designs.LoadDesign(args[0])
	if err != nil {
		return fmt.Errorf("load design: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(st.Objects)
}
