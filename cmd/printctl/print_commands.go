package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"thermal-print-service/internal/dispatch"
	"thermal-print-service/internal/handler"
	"thermal-print-service/internal/service"
)

func newTextCommand(ctx *commandContext) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "text [TEXT]",
		Short: "Print a text ticket (reads stdin when TEXT is omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return ctx.withService(func(s *service.PrintService) error {
				outcome, err := s.PrintText(cmd.Context(), text, title)
				return report(cmd, outcome, err)
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Ticket title (defaults to the configured title)")
	return cmd
}

func newBufferCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "buffer FILE",
		Short: "Send a prebuilt ESC/POS file unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read buffer: %w", err)
			}
			return ctx.withService(func(s *service.PrintService) error {
				outcome, err := s.PrintBuffer(cmd.Context(), buf)
				return report(cmd, outcome, err)
			})
		},
	}
}

func newPrintersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "printers",
		Short: "List the destinations every backend would try",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(s *service.PrintService) error {
				return writeJSON(cmd.OutOrStdout(), s.Detect(cmd.Context()))
			})
		},
	}
}

func readText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// report prints the outcome, or the attempt log and hints on failure
func report(cmd *cobra.Command, outcome *dispatch.Outcome, err error) error {
	if err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "printed via %s on %s", outcome.Backend, outcome.Destination)
		if outcome.Encoding != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " (%s", outcome.Encoding)
			if outcome.Degraded {
				fmt.Fprintf(cmd.OutOrStdout(), ", transliterated from %s", outcome.RequestedEncoding)
			}
			fmt.Fprint(cmd.OutOrStdout(), ")")
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	}

	var aggErr *dispatch.AggregateError
	if errors.As(err, &aggErr) {
		stderr := cmd.ErrOrStderr()
		fmt.Fprintf(stderr, "print failed after %d attempts:\n", len(aggErr.Attempts))
		for i, a := range aggErr.Attempts {
			dest := "-"
			if a.Destination != nil {
				dest = a.Destination.String()
			}
			fmt.Fprintf(stderr, "  %2d. %-12s %-28s %-13s %s\n", i+1, a.Backend, dest, a.Encoding, a.Reason)
		}
		for _, hint := range handler.Suggestions(aggErr) {
			fmt.Fprintf(stderr, "hint: %s\n", hint)
		}
		return dispatch.ErrAllAttemptsFailed
	}
	return err
}
