// internal/dispatch/dispatcher.go
package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"thermal-print-service/internal/codepage"
	"thermal-print-service/internal/driver/escpos"
	"thermal-print-service/internal/model"
	"thermal-print-service/internal/utils"
)

// DefaultAttemptTimeout bounds a single attempt
const DefaultAttemptTimeout = 10 * time.Second

// Outcome describes a successful dispatch
type Outcome struct {
	DispatchID  string            `json:"dispatch_id"`
	Backend     string            `json:"backend"`
	Destination model.Destination `json:"destination"`
	// Encoding is the code page the bytes were sent in; it differs from
	// RequestedEncoding when the text was transliterated to ASCII.
	Encoding          string              `json:"encoding,omitempty"`
	RequestedEncoding string              `json:"requested_encoding,omitempty"`
	Degraded          bool                `json:"degraded"`
	Duration          time.Duration       `json:"duration_ns"`
	Succeeded         model.AttemptResult `json:"succeeded"`
	// Attempts holds the failed attempts that preceded the success
	Attempts []model.AttemptResult `json:"failed_attempts"`
}

// EventHandler receives dispatch events as they happen
type EventHandler interface {
	HandleDispatchEvent(event model.DispatchEvent)
}

// Dispatcher walks a backend chain until one attempt delivers the job
type Dispatcher struct {
	builder        *escpos.Builder
	attemptTimeout time.Duration
	logger         *zap.Logger
	events         EventHandler
}

// NewDispatcher creates a dispatcher. A non-positive attemptTimeout
// selects DefaultAttemptTimeout.
func NewDispatcher(builder *escpos.Builder, attemptTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	if builder == nil {
		builder = escpos.NewBuilder()
	}
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	return &Dispatcher{
		builder:        builder,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// SetEventHandler sets the receiver of dispatch events
func (d *Dispatcher) SetEventHandler(handler EventHandler) {
	d.events = handler
}

// payload is the rendered job for one encoding
type payload struct {
	bytes     []byte
	encoding  string
	requested string
	degraded  bool
}

// Dispatch tries every backend in chain order, every encoding the backend
// offers and every destination it resolves, and stops at the first
// success. Attempts run one at a time, each bounded by the attempt
// timeout. Cancelling ctx after dispatch has started does not abort the
// chain; only its values are inherited.
func (d *Dispatcher) Dispatch(ctx context.Context, job *model.PrintJob, chain Chain) (*Outcome, error) {
	if job == nil {
		return nil, errors.New("nil print job")
	}

	dispatchID := uuid.NewString()
	log := utils.NewAttemptLogger(d.logger, dispatchID, job.Kind())
	log.Start(zap.Strings("chain", chain.Names()), zap.Int("size", job.Size()))

	started := model.NewDispatchEvent(model.EventDispatchStarted, dispatchID)
	started.JobKind = job.Kind()
	d.publish(started)

	base := context.WithoutCancel(ctx)
	start := time.Now()
	var failed []model.AttemptResult

	record := func(result model.AttemptResult) {
		log.Attempt(result)
		event := model.NewDispatchEvent(model.EventAttemptCompleted, dispatchID)
		event.JobKind = job.Kind()
		event.Attempt = &result
		if !result.Succeeded() {
			event.Severity = "WARNING"
		}
		d.publish(event)
	}

	for _, backend := range chain {
		destinations, err := d.resolve(base, backend)
		if err != nil || len(destinations) == 0 {
			result := unavailable(backend, err)
			record(result)
			failed = append(failed, result)
			continue
		}

		for _, p := range d.render(job, backend, log) {
			for _, dest := range destinations {
				result := d.attempt(base, backend, dest, p)
				record(result)

				if result.Succeeded() {
					outcome := &Outcome{
						DispatchID:        dispatchID,
						Backend:           backend.Name(),
						Destination:       dest,
						Encoding:          p.encoding,
						RequestedEncoding: p.requested,
						Degraded:          p.degraded,
						Duration:          time.Since(start),
						Succeeded:         result,
						Attempts:          failed,
					}
					log.Success(len(failed)+1,
						zap.String("backend", outcome.Backend),
						zap.Stringer("destination", dest),
						zap.String("encoding", outcome.Encoding),
					)
					done := model.NewDispatchEvent(model.EventDispatchSucceeded, dispatchID)
					done.JobKind = job.Kind()
					done.Attempt = &result
					d.publish(done)
					return outcome, nil
				}
				failed = append(failed, result)
			}
		}
	}

	aggErr := &AggregateError{DispatchID: dispatchID, Attempts: failed}
	log.Failure(aggErr, len(failed))
	fail := model.NewDispatchEvent(model.EventDispatchFailed, dispatchID)
	fail.JobKind = job.Kind()
	d.publish(fail)
	return nil, aggErr
}

// render builds one payload per encoding the backend offers. Profiles
// that produce the same bytes as an earlier one, as happens when several
// degrade to ASCII, are tried only once. Buffer jobs yield a single
// payload passed through untouched.
func (d *Dispatcher) render(job *model.PrintJob, backend Backend, log *utils.AttemptLogger) []payload {
	if job.Kind() == model.JobKindBuffer {
		return []payload{{bytes: job.Buffer()}}
	}

	profiles := backend.Profiles()
	if len(profiles) == 0 {
		profiles = codepage.DefaultProfiles()
	}

	payloads := make([]payload, 0, len(profiles))
	for _, profile := range profiles {
		body := codepage.Encode(job.Text(), profile)

		var title []byte
		titleDegraded := false
		if job.Title() != "" {
			t := codepage.Encode(job.Title(), body.Profile)
			title, titleDegraded = t.Bytes, t.Degraded
		}

		out := d.builder.Build(body.Bytes, body.Profile, escpos.BuildOptions{Title: title})
		if duplicate(payloads, out) {
			continue
		}

		degraded := body.Degraded || titleDegraded
		if degraded {
			log.Degraded(backend.Name(), profile.Name)
		}

		payloads = append(payloads, payload{
			bytes:     out,
			encoding:  body.Profile.Name,
			requested: profile.Name,
			degraded:  degraded,
		})
	}
	return payloads
}

func duplicate(payloads []payload, out []byte) bool {
	for _, p := range payloads {
		if bytes.Equal(p.bytes, out) {
			return true
		}
	}
	return false
}

// resolve lists the backend's destinations, bounded like an attempt
func (d *Dispatcher) resolve(ctx context.Context, backend Backend) ([]model.Destination, error) {
	resolveCtx, cancel := context.WithTimeout(ctx, d.attemptTimeout)
	defer cancel()
	return backend.Resolve(resolveCtx)
}

func (d *Dispatcher) attempt(ctx context.Context, backend Backend, dest model.Destination, p payload) model.AttemptResult {
	attemptCtx, cancel := context.WithTimeout(ctx, d.attemptTimeout)
	defer cancel()

	start := time.Now()
	err := backend.Send(attemptCtx, dest, p.bytes)
	if err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrAttemptTimeout) {
		err = fmt.Errorf("%w after %s: %w", ErrAttemptTimeout, d.attemptTimeout, err)
	}

	result := model.AttemptResult{
		Backend:           backend.Name(),
		Destination:       &dest,
		Encoding:          p.encoding,
		RequestedEncoding: p.requested,
		Degraded:          p.degraded,
		Outcome:           model.OutcomeSuccess,
		Duration:          time.Since(start),
	}
	if err != nil {
		result.Outcome = model.OutcomeFailure
		result.Reason = Classify(err)
		result.Err = err
		result.Message = err.Error()
	}
	return result
}

func unavailable(backend Backend, err error) model.AttemptResult {
	if err == nil {
		err = fmt.Errorf("%w: %s resolved no destinations", ErrDestinationUnavailable, backend.Name())
	} else {
		err = fmt.Errorf("%w: %s: %w", ErrDestinationUnavailable, backend.Name(), err)
	}
	return model.AttemptResult{
		Backend: backend.Name(),
		Outcome: model.OutcomeFailure,
		Reason:  model.ReasonDestinationUnavailable,
		Err:     err,
		Message: err.Error(),
	}
}

func (d *Dispatcher) publish(event model.DispatchEvent) {
	if d.events != nil {
		d.events.HandleDispatchEvent(event)
	}
}
