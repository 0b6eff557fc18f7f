package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/sem-merge/internal/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List supported providers and their default models",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, spec := range providers.Specs() {
			fmt.Fprintf(out, "%s:\n", spec.Name)
			fmt.Fprintf(out, "  default model: %s\n", spec.DefaultModel)
			fmt.Fprintf(out, "  endpoint:      %s\n", spec.BaseURL)
			fmt.Fprintf(out, "  credential:    %s\n", spec.KeyEnv)
			fmt.Fprintln(out)
		}
	},
}
