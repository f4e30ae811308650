package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thermal-print-service/internal/dispatch"
	"thermal-print-service/internal/model"
)

func TestRootCommandListsSubcommands(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"text", "buffer", "printers", "setup"}, names)
}

func TestReadText(t *testing.T) {
	text, err := readText(strings.NewReader("ignored"), []string{"hola"})
	require.NoError(t, err)
	assert.Equal(t, "hola", text)

	text, err = readText(strings.NewReader("línea 1\nlínea 2\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "línea 1\nlínea 2\n", text)
}

func TestBufferRequiresFile(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"buffer"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	assert.Error(t, root.Execute())
}

func TestReport(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	dest := model.Destination{Kind: model.DestinationDevicePath, Identifier: "/dev/usb/lp0"}
	err := report(root, &dispatch.Outcome{Backend: "raw-device", Destination: dest, Encoding: "CP858"}, nil)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "printed via raw-device")
	assert.Contains(t, stdout.String(), "CP858")

	aggErr := &dispatch.AggregateError{DispatchID: "d-1", Attempts: []model.AttemptResult{
		{Backend: "raw-device", Destination: &dest, Encoding: "CP858", Outcome: model.OutcomeFailure, Reason: model.ReasonPermissionDenied},
	}}
	err = report(root, nil, aggErr)
	assert.ErrorIs(t, err, dispatch.ErrAllAttemptsFailed)
	assert.Contains(t, stderr.String(), "PERMISSION_DENIED")
	assert.Contains(t, stderr.String(), "hint: ")
}
