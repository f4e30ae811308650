// internal/service/print_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"thermal-print-service/internal/dispatch"
	"thermal-print-service/internal/model"
	"thermal-print-service/internal/utils"
)

var (
	// ErrEmptyJob is returned for blank text and zero-length buffers
	ErrEmptyJob = errors.New("print job is empty")
	// ErrJobTooLarge is returned when a job exceeds the configured size
	ErrJobTooLarge = errors.New("print job too large")
	// ErrPrinterBusy is returned when another process holds the printer lock
	// for longer than the lock timeout
	ErrPrinterBusy = errors.New("printer is busy")
)

const lockRetryDelay = 100 * time.Millisecond

// Options configures a PrintService
type Options struct {
	// DefaultTitle is printed above text tickets that have no title
	DefaultTitle string
	MaxJobBytes  int
	// LockFile is the cross-process lock path; empty disables it
	LockFile    string
	LockTimeout time.Duration
}

// PrintService accepts print jobs and runs them through the backend chain
// one at a time.
type PrintService struct {
	dispatcher *dispatch.Dispatcher
	chain      dispatch.Chain
	options    Options
	fileLock   *flock.Flock
	mutex      sync.Mutex
	logger     *utils.ServiceLogger
}

// NewPrintService creates a print service
func NewPrintService(dispatcher *dispatch.Dispatcher, chain dispatch.Chain, options Options, logger *zap.Logger) *PrintService {
	s := &PrintService{
		dispatcher: dispatcher,
		chain:      chain,
		options:    options,
		logger:     utils.NewServiceLogger(logger, "print-service"),
	}
	if options.LockFile != "" {
		s.fileLock = flock.New(options.LockFile)
	}
	return s
}

// PrintText prints a text ticket. An empty title selects the default one.
func (s *PrintService) PrintText(ctx context.Context, text, title string) (*dispatch.Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyJob
	}
	if err := s.checkSize(len(text) + len(title)); err != nil {
		return nil, err
	}
	if title == "" {
		title = s.options.DefaultTitle
	}
	return s.dispatch(ctx, model.NewTextJob(text, title))
}

// PrintBuffer prints a prebuilt ESC/POS command stream unchanged
func (s *PrintService) PrintBuffer(ctx context.Context, buf []byte) (*dispatch.Outcome, error) {
	if len(buf) == 0 {
		return nil, ErrEmptyJob
	}
	if err := s.checkSize(len(buf)); err != nil {
		return nil, err
	}
	return s.dispatch(ctx, model.NewBufferJob(buf))
}

func (s *PrintService) checkSize(size int) error {
	if s.options.MaxJobBytes > 0 && size > s.options.MaxJobBytes {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrJobTooLarge, size, s.options.MaxJobBytes)
	}
	return nil
}

func (s *PrintService) dispatch(ctx context.Context, job *model.PrintJob) (*dispatch.Outcome, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.fileLock != nil {
		if err := s.acquireFileLock(ctx); err != nil {
			return nil, err
		}
		defer func() {
			if err := s.fileLock.Unlock(); err != nil {
				s.logger.Warn("Failed to release printer lock", zap.Error(err))
			}
		}()
	}

	outcome, err := s.dispatcher.Dispatch(ctx, job, s.chain)
	if err != nil {
		var aggErr *dispatch.AggregateError
		if errors.As(err, &aggErr) && aggErr.HasPermissionDenied() {
			s.logger.Warn("Printer access was denied; check device permissions or lp group membership",
				zap.String("dispatch_id", aggErr.DispatchID))
		}
		return nil, err
	}
	return outcome, nil
}

func (s *PrintService) acquireFileLock(ctx context.Context) error {
	lockCtx := ctx
	if s.options.LockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.options.LockTimeout)
		defer cancel()
	}

	locked, err := s.fileLock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("%w: waiting for %s: %w", ErrPrinterBusy, s.fileLock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("%w: could not lock %s", ErrPrinterBusy, s.fileLock.Path())
	}
	return nil
}

// BackendReport is the detection result for one backend
type BackendReport struct {
	Name         string              `json:"name"`
	Kind         string              `json:"kind"`
	Profiles     []string            `json:"profiles"`
	Destinations []model.Destination `json:"destinations"`
	Error        string              `json:"error,omitempty"`
}

// DetectionReport lists what every backend would currently try
type DetectionReport struct {
	Platform  string          `json:"platform"`
	Backends  []BackendReport `json:"backends"`
	Available int             `json:"available"`
	Timestamp time.Time       `json:"timestamp"`
}

// Detect resolves every backend's destinations without printing
func (s *PrintService) Detect(ctx context.Context) *DetectionReport {
	report := &DetectionReport{
		Platform:  runtime.GOOS,
		Backends:  make([]BackendReport, 0, len(s.chain)),
		Timestamp: time.Now(),
	}

	for _, b := range s.chain {
		entry := BackendReport{
			Name:         b.Name(),
			Kind:         string(b.Kind()),
			Destinations: []model.Destination{},
		}
		for _, p := range b.Profiles() {
			entry.Profiles = append(entry.Profiles, p.Name)
		}

		dests, err := b.Resolve(ctx)
		if err != nil {
			entry.Error = err.Error()
			s.logger.Debug("Backend resolution failed", zap.String("backend", b.Name()), zap.Error(err))
		}
		if len(dests) > 0 {
			entry.Destinations = dests
		}
		report.Available += len(dests)
		report.Backends = append(report.Backends, entry)
	}

	return report
}

// Backends returns the chain's backend names in order
func (s *PrintService) Backends() []string {
	return s.chain.Names()
}

// Close releases the lock file handle
func (s *PrintService) Close() error {
	if s.fileLock == nil {
		return nil
	}
	return s.fileLock.Close()
}
