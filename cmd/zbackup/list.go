package main

import (
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the effective backup policy of every filesystem",
	Long: `List every filesystem carrying zbackup properties, one line each,
showing the policy that actually applies there: locally set values merged
with defaults received or inherited from upstream.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		return r.List(cmd.Context(), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
