package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"prediction-dashboard/internal/analytics"
	"prediction-dashboard/internal/models"
)

var historyFlags struct {
	model string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or edit the prediction history of one model",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history entries with the category distribution",
	RunE:  runHistoryList,
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Remove one history entry (out of range indexes are ignored)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRemove,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every history entry of the model",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.PersistentFlags().StringVarP(&historyFlags.model, "model", "m", string(models.SixClass), "Model variant")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyRemoveCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	variant, err := parseVariantArg(historyFlags.model)
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	printHistory(cmd, a.Predictor.History(variant))
	return nil
}

func runHistoryRemove(cmd *cobra.Command, args []string) error {
	variant, err := parseVariantArg(historyFlags.model)
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q", args[0])
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Predictor.RemoveEntry(cmd.Context(), variant, index); err != nil {
		return err
	}
	printHistory(cmd, a.Predictor.History(variant))
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	variant, err := parseVariantArg(historyFlags.model)
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Predictor.ClearHistory(cmd.Context(), variant); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s history\n", variant)
	return nil
}

func printHistory(cmd *cobra.Command, view analytics.HistoryView) {
	out := cmd.OutOrStdout()
	if view.Total == 0 {
		fmt.Fprintf(out, "No %s predictions yet\n", view.Variant)
		return
	}

	fmt.Fprintf(out, "%s history (%d)\n", view.Variant, view.Total)
	for _, row := range view.Rows {
		fmt.Fprintf(out, "  [%d] %s  %-14s %-8s %s\n", row.Index, dim(row.Timestamp), row.Category, row.Confidence, row.Input)
	}

	fmt.Fprintf(out, "Distribution:\n")
	for _, c := range view.Distribution {
		fmt.Fprintf(out, "  %-14s %d\n", c.Label, c.Count)
	}
}
