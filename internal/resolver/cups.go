// internal/resolver/cups.go
package resolver

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"go.uber.org/zap"

	"thermal-print-service/internal/execx"
	"thermal-print-service/internal/model"
)

// QueueResolver lists CUPS queues that may be used for raw printing.
// Enumerated queues are filtered by the accepted names, in accepted-name
// order. If enumeration fails the accepted names are returned unfiltered
// so the spooler can still try them.
type QueueResolver struct {
	runner         execx.Runner
	lpstat         string
	accepted       []string
	includeDefault bool
	logger         *zap.Logger
}

// NewQueueResolver creates a CUPS queue resolver
func NewQueueResolver(runner execx.Runner, lpstat string, accepted []string, includeDefault bool, logger *zap.Logger) *QueueResolver {
	if lpstat == "" {
		lpstat = "lpstat"
	}
	return &QueueResolver{
		runner:         runner,
		lpstat:         lpstat,
		accepted:       accepted,
		includeDefault: includeDefault,
		logger:         logger.With(zap.String("resolver", "cups")),
	}
}

func (r *QueueResolver) Name() string { return "cups" }

// Resolve returns the usable queues followed by the default queue
func (r *QueueResolver) Resolve(ctx context.Context) ([]model.Destination, error) {
	var names []string

	out, err := r.runner.Run(ctx, r.lpstat, "-e")
	if err != nil {
		r.logger.Warn("Queue enumeration failed, using accepted names", zap.Error(err))
		names = append(names, r.accepted...)
	} else {
		names = filterAccepted(ParseQueueList(out.Stdout), r.accepted)
	}

	dests := make([]model.Destination, 0, len(names)+1)
	for _, name := range names {
		dests = append(dests, model.Destination{
			Kind:       model.DestinationQueueName,
			Identifier: name,
			Label:      name,
		})
	}
	if r.includeDefault {
		dests = append(dests, model.Destination{Kind: model.DestinationQueueName, Label: "default"})
	}
	return dests, nil
}

// ParseQueueList reads queue names from `lpstat -e` (one name per line)
// or `lpstat -p` ("printer NAME is idle...") output.
func ParseQueueList(output []byte) []string {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		switch {
		case len(fields) == 0:
		case len(fields) == 1:
			names = append(names, fields[0])
		case fields[0] == "printer":
			names = append(names, fields[1])
		}
	}
	return names
}

// filterAccepted keeps available names that match an accepted name,
// ordered by the accepted list. With no accepted names everything is kept.
func filterAccepted(available, accepted []string) []string {
	if len(accepted) == 0 {
		return available
	}
	var out []string
	for _, want := range accepted {
		for _, name := range available {
			if strings.EqualFold(name, want) {
				out = append(out, name)
				break
			}
		}
	}
	return out
}
