package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"thermal-print-service/internal/config"
	"thermal-print-service/internal/service"
	"thermal-print-service/internal/utils"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	once    sync.Once
	config  *config.Config
	logger  *zap.Logger
	initErr error
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var verbose bool

	ctx := &commandContext{configFlag: &configFlag, verboseFlag: &verbose}

	rootCmd := &cobra.Command{
		Use:           "printctl",
		Short:         "Print tickets on the thermal printer and manage its setup",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every print attempt to stderr")

	rootCmd.AddCommand(newTextCommand(ctx))
	rootCmd.AddCommand(newBufferCommand(ctx))
	rootCmd.AddCommand(newPrintersCommand(ctx))
	rootCmd.AddCommand(newSetupCommand(ctx))

	return rootCmd
}

// ensure loads configuration once and builds a stderr logger
func (c *commandContext) ensure() (*config.Config, *zap.Logger, error) {
	c.once.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.initErr = err
			return
		}

		logging := cfg.Logging
		logging.Output = "stderr"
		logging.Format = "console"
		if !*c.verboseFlag {
			logging.Level = "warn"
		}
		logger, err := utils.NewLogger(&logging)
		if err != nil {
			c.initErr = err
			return
		}

		c.config = cfg
		c.logger = logger
	})
	return c.config, c.logger, c.initErr
}

// withService runs fn against a print service for this host
func (c *commandContext) withService(fn func(*service.PrintService) error) error {
	cfg, logger, err := c.ensure()
	if err != nil {
		return err
	}
	defer logger.Sync()

	printService, err := service.NewFromConfig(cfg, runtime.GOOS, nil, logger)
	if err != nil {
		return err
	}
	defer printService.Close()

	return fn(printService)
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
