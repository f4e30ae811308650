// Package setup reconfigures host printer queues for raw ESC/POS jobs.
// It is only run on request and never from the print path.
package setup

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"thermal-print-service/internal/execx"
)

// driverMarkers identify queues set up with a PostScript or HP driver,
// which mangle ESC/POS bytes.
var driverMarkers = []string{"PostScript", "DesignJet", "HP", "T920"}

// QueueStatus describes one accepted queue name on this host
type QueueStatus struct {
	Name      string `json:"name"`
	Present   bool   `json:"present"`
	DeviceURI string `json:"device_uri,omitempty"`
	NeedsFix  bool   `json:"needs_fix"`
	Reason    string `json:"reason,omitempty"`
}

// Report is the result of a setup run
type Report struct {
	Queues   []QueueStatus `json:"queues"`
	Commands []string      `json:"commands"`
	Applied  bool          `json:"applied"`
}

// CupsOptions configures the CUPS fixer
type CupsOptions struct {
	Lpstat string
	// Queues are the accepted queue names to inspect
	Queues []string
	// FallbackDeviceURI is used when a queue's device URI cannot be read
	FallbackDeviceURI string
	// SetDefault makes the first fixed queue the system default
	SetDefault bool
}

// CupsFixer finds CUPS queues using a document driver and recreates them
// as raw queues.
type CupsFixer struct {
	runner  execx.Runner
	options CupsOptions
	logger  *zap.Logger
}

// NewCupsFixer creates a fixer
func NewCupsFixer(runner execx.Runner, options CupsOptions, logger *zap.Logger) *CupsFixer {
	if options.Lpstat == "" {
		options.Lpstat = "lpstat"
	}
	if options.FallbackDeviceURI == "" {
		options.FallbackDeviceURI = "usb://Unknown/Printer"
	}
	return &CupsFixer{
		runner:  runner,
		options: options,
		logger:  logger.With(zap.String("component", "cups-setup")),
	}
}

// Inspect reports the state of every configured queue
func (f *CupsFixer) Inspect(ctx context.Context) []QueueStatus {
	statuses := make([]QueueStatus, 0, len(f.options.Queues))
	for _, name := range f.options.Queues {
		status := QueueStatus{Name: name}

		out, err := f.runner.Run(ctx, f.options.Lpstat, "-l", "-p", name)
		if err != nil {
			statuses = append(statuses, status)
			continue
		}
		status.Present = true

		for _, marker := range driverMarkers {
			if bytes.Contains(out.Stdout, []byte(marker)) {
				status.NeedsFix = true
				status.Reason = fmt.Sprintf("queue uses a %s driver", marker)
				break
			}
		}

		status.DeviceURI = f.options.FallbackDeviceURI
		if out, err := f.runner.Run(ctx, f.options.Lpstat, "-v", name); err == nil {
			if uri := ParseDeviceURI(out.Stdout, name); uri != "" {
				status.DeviceURI = uri
			}
		}

		statuses = append(statuses, status)
	}
	return statuses
}

// Plan lists the commands that turn the flagged queues into raw queues
func (f *CupsFixer) Plan(statuses []QueueStatus) [][]string {
	var commands [][]string
	defaultQueue := ""
	for _, s := range statuses {
		if !s.NeedsFix {
			continue
		}
		commands = append(commands,
			[]string{"lpadmin", "-x", s.Name},
			[]string{"lpadmin", "-p", s.Name, "-v", s.DeviceURI, "-m", "raw", "-E"},
			[]string{"lpoptions", "-p", s.Name, "-o", "raw"},
			[]string{"cupsenable", s.Name},
			[]string{"cupsaccept", s.Name},
		)
		if defaultQueue == "" {
			defaultQueue = s.Name
		}
	}
	if f.options.SetDefault && defaultQueue != "" {
		commands = append(commands, []string{"lpadmin", "-d", defaultQueue})
	}
	return commands
}

// Run inspects the queues and, when apply is set, executes the plan.
// Without apply it only reports what would be run.
func (f *CupsFixer) Run(ctx context.Context, apply bool) (*Report, error) {
	statuses := f.Inspect(ctx)
	plan := f.Plan(statuses)

	report := &Report{Queues: statuses, Commands: make([]string, len(plan))}
	for i, cmd := range plan {
		report.Commands[i] = strings.Join(cmd, " ")
	}

	if !apply || len(plan) == 0 {
		return report, nil
	}

	for _, cmd := range plan {
		f.logger.Info("Running setup command", zap.Strings("command", cmd))
		if _, err := f.runner.Run(ctx, cmd[0], cmd[1:]...); err != nil {
			return report, fmt.Errorf("setup command %q failed: %w", strings.Join(cmd, " "), err)
		}
	}
	report.Applied = true
	return report, nil
}

// ParseDeviceURI reads "device for NAME: URI" from `lpstat -v` output
func ParseDeviceURI(output []byte, name string) string {
	prefix := "device for " + name + ":"
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
