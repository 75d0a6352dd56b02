package main

import (
	"github.com/spf13/cobra"
)

var (
	fieldsView    string
	fieldsRefresh bool
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <list>",
	Short: "Show the columns of a list view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(false)
		if err != nil {
			return err
		}
		defer a.Close()

		load := a.stack.Browser.ListFields
		if fieldsRefresh {
			load = a.stack.Browser.RefreshFields
		}
		fields, err := load(cmd.Context(), args[0], fieldsView)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, fields)
	},
}

func init() {
	fieldsCmd.Flags().StringVar(&fieldsView, "view", "", "view name (default view when empty)")
	fieldsCmd.Flags().BoolVar(&fieldsRefresh, "refresh", false, "ignore cached metadata")
}
