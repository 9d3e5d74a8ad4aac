package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Resolve one URL and print the JSON result",
	Args:  cobra.ExactArgs(1),
	RunE:  extractRun,
}

func extractRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.Resolve(ctx, args[0])
	if err != nil {
		out, _ := json.Marshal(map[string]any{"success": false, "error": err.Error()})
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
