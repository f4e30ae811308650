package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thermal-print-service/internal/execx/execxtest"
)

func TestParseQueueList(t *testing.T) {
	assert.Equal(t, []string{"Albaranes", "HP_T920"}, ParseQueueList([]byte("Albaranes\nHP_T920\n\n")))
	assert.Equal(t, []string{"ALBARAN", "Office"}, ParseQueueList([]byte(
		"printer ALBARAN is idle.  enabled since Mon 01 Jan\nprinter Office disabled since Tue\n")))
	assert.Empty(t, ParseQueueList(nil))
}

func TestQueueResolver_FiltersAcceptedInOrder(t *testing.T) {
	runner := execxtest.NewRunner().Respond("lpstat", "Office\nalbaran\nAlbaranes\n")
	r := NewQueueResolver(runner, "", []string{"Albaranes", "ALBARAN", "auto"}, true, zap.NewNop())

	dests, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.Len(t, dests, 3)
	assert.Equal(t, "Albaranes", dests[0].Identifier)
	assert.Equal(t, "albaran", dests[1].Identifier)
	assert.True(t, dests[2].IsDefaultQueue())
	assert.Equal(t, []string{"lpstat -e"}, runner.Lines())
}

func TestQueueResolver_EnumerationFailureFallsBack(t *testing.T) {
	runner := execxtest.NewRunner().Fail("lpstat", 1, "scheduler is not running")
	r := NewQueueResolver(runner, "lpstat", []string{"Albaranes", "ALBARAN"}, true, zap.NewNop())

	dests, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Albaranes", "ALBARAN", ""}, identifiers(dests))
}

func TestQueueResolver_NoDefault(t *testing.T) {
	runner := execxtest.NewRunner().Respond("lpstat", "Office\n")
	r := NewQueueResolver(runner, "lpstat", []string{"Albaranes"}, false, zap.NewNop())

	dests, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dests)
}
