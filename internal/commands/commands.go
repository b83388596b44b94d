package commands

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "./config/application.yaml"

type rootOptions struct {
	ConfigPath string
}

func New() *cobra.Command {
	ro := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Shared agenda display with live countdowns and cascade rescheduling.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ro)
		},
	}
	cmd.PersistentFlags().StringVarP(&ro.ConfigPath, "config", "c", defaultConfigPath, "Path to the YAML configuration file.")

	AddCommands(cmd, ro)
	return cmd
}

func AddCommands(topLevel *cobra.Command, ro *rootOptions) {
	addServe(topLevel, ro)
	addToday(topLevel, ro)
}
