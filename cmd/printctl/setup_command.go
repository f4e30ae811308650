package main

import (
	"github.com/spf13/cobra"

	"thermal-print-service/internal/execx"
	"thermal-print-service/internal/setup"
)

func newSetupCommand(ctx *commandContext) *cobra.Command {
	var apply bool
	var setDefault bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Reconfigure CUPS queues with a document driver as raw queues",
		Long: "Inspects the accepted queue names and plans the lpadmin commands that turn\n" +
			"PostScript or HP queues into raw queues. Nothing is changed without --apply,\n" +
			"which needs the privileges lpadmin requires.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensure()
			if err != nil {
				return err
			}
			defer logger.Sync()

			fixer := setup.NewCupsFixer(execx.NewCommandRunner(cfg.Printer.CommandTimeout, logger), setup.CupsOptions{
				Lpstat:            cfg.Printer.LpstatBinary,
				Queues:            cfg.Printer.AcceptedNames,
				FallbackDeviceURI: cfg.Printer.SetupDeviceURI,
				SetDefault:        setDefault,
			}, logger)

			report, runErr := fixer.Run(cmd.Context(), apply)
			if report != nil {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Run the planned commands instead of listing them")
	cmd.Flags().BoolVar(&setDefault, "set-default", true, "Make the first fixed queue the system default")
	return cmd
}
