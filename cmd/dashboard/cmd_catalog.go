package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prediction-dashboard/internal/models"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [model]",
	Short: "Print the class labels of one or every model",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	variants := models.Variants
	if len(args) == 1 {
		variant, err := parseVariantArg(args[0])
		if err != nil {
			return err
		}
		variants = []models.ModelVariant{variant}
	}

	out := cmd.OutOrStdout()
	for _, v := range variants {
		fmt.Fprintf(out, "%s\n", v)
		for i, label := range v.Classes() {
			fmt.Fprintf(out, "  %d  %s\n", i, label)
		}
	}
	return nil
}
