// internal/backend/spooler.go
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"thermal-print-service/internal/codepage"
	"thermal-print-service/internal/dispatch"
	"thermal-print-service/internal/execx"
	"thermal-print-service/internal/model"
	"thermal-print-service/internal/resolver"
)

// CommandLine returns the program and arguments that submit file to dest
type CommandLine func(dest model.Destination, file string) (string, []string)

// LprCommand submits a raw job with CUPS lpr. The default queue is used
// when the destination has no identifier.
func LprCommand(binary string) CommandLine {
	if binary == "" {
		binary = "lpr"
	}
	return func(dest model.Destination, file string) (string, []string) {
		var args []string
		if !dest.IsDefaultQueue() {
			args = append(args, "-P", dest.Identifier)
		}
		return binary, append(args, "-o", "raw", file)
	}
}

// RawPrintCommand submits a job through a helper invoked as
// `helper PRINTER FILE`, which hands the bytes to the Windows spooler
// with the RAW datatype.
func RawPrintCommand(helper string) CommandLine {
	return func(dest model.Destination, file string) (string, []string) {
		return helper, []string{dest.Identifier, file}
	}
}

// SpoolerBackend writes the payload to a temp file and submits it with an
// external command.
type SpoolerBackend struct {
	name     string
	resolver resolver.Resolver
	runner   execx.Runner
	command  CommandLine
	profiles []codepage.Profile
	tempDir  string
	logger   *zap.Logger
}

// NewSpoolerBackend creates a spooler backend. An empty tempDir selects
// the system temp directory.
func NewSpoolerBackend(name string, r resolver.Resolver, runner execx.Runner, command CommandLine, profiles []codepage.Profile, tempDir string, logger *zap.Logger) *SpoolerBackend {
	return &SpoolerBackend{
		name:     name,
		resolver: r,
		runner:   runner,
		command:  command,
		profiles: profiles,
		tempDir:  tempDir,
		logger:   logger.With(zap.String("backend", name)),
	}
}

func (b *SpoolerBackend) Name() string               { return b.name }
func (b *SpoolerBackend) Kind() dispatch.BackendKind { return dispatch.KindSpooler }

func (b *SpoolerBackend) Resolve(ctx context.Context) ([]model.Destination, error) {
	return b.resolver.Resolve(ctx)
}

func (b *SpoolerBackend) Profiles() []codepage.Profile {
	return b.profiles
}

func (b *SpoolerBackend) Send(ctx context.Context, dest model.Destination, payload []byte) error {
	file, err := b.writeTemp(payload)
	if err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			b.logger.Warn("Failed to remove spool file", zap.String("file", file), zap.Error(err))
		}
	}()

	name, args := b.command(dest, file)
	if _, err := b.runner.Run(ctx, name, args...); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s is not installed: %w", dispatch.ErrDestinationUnavailable, name, err)
		}
		return fmt.Errorf("%w: %s to %s: %w", dispatch.ErrBackend, name, dest, err)
	}

	b.logger.Debug("Job submitted", zap.Stringer("destination", dest), zap.Int("bytes", len(payload)))
	return nil
}

func (b *SpoolerBackend) writeTemp(payload []byte) (string, error) {
	f, err := os.CreateTemp(b.tempDir, "thermal-ticket-*.bin")
	if err != nil {
		return "", fmt.Errorf("%w: create spool file: %w", dispatch.ErrBackend, err)
	}
	_, writeErr := f.Write(payload)
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("%w: write spool file: %w", dispatch.ErrBackend, err)
	}
	return f.Name(), nil
}
