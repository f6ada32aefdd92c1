package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// addJSONFlag registers the shared --json output flag on a command.
func addJSONFlag(cmd *cobra.Command, target *bool) {
	cmd.Flags().BoolVar(target, "json", false, "Emit machine-readable JSON")
}

// writeJSON renders v as indented JSON on the command's stdout, one
// document per invocation, so output is pipeable to jq.
func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
