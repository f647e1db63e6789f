package main

import (
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <filesystem> <property=value>...",
	Short: "Set backup properties on a filesystem",
	Long: `Set zbackup properties directly on a filesystem, bypassing the
decision engine. Property names are bare (e.g. daily-snapshots); the
module prefix is added automatically.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		return r.SetProperties(cmd.Context(), args[0], args[1:])
	},
}

var unsetCmd = &cobra.Command{
	Use:   "unset <filesystem> <property>...",
	Short: "Unset backup properties on a filesystem",
	Long: `Remove the local value of zbackup properties from a filesystem,
reverting them to whatever its ancestors provide.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		return r.UnsetProperties(cmd.Context(), args[0], args[1:])
	},
}

func init() {
	rootCmd.AddCommand(setCmd, unsetCmd)
}
