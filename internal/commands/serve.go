package commands

import (
	"github.com/klokku/agenda/internal/app"
	"github.com/klokku/agenda/internal/config"
	"github.com/spf13/cobra"
)

func addServe(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the agenda HTTP server.",
		Example: `
agenda serve
agenda serve --config /etc/agenda/application.yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ro)
		},
	}
	topLevel.AddCommand(cmd)
}

func runServe(ro *rootOptions) error {
	cfg, err := config.Load(ro.ConfigPath)
	if err != nil {
		return err
	}
	application, err := app.NewApplication(cfg)
	if err != nil {
		return err
	}
	return application.Run()
}
