package patch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacy-bridge/internal/affinity"
	"legacy-bridge/internal/bridge/bridgetest"
)

var opShow = Op{Owner: "ij.ImagePlus", Signature: "Show(string)"}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected string
	}{
		{Replace, "replace"},
		{Prepend, "prepend"},
		{Append, "append"},
		{Mode(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.mode.String())
		})
	}
}

func TestBindRejectsDuplicates(t *testing.T) {
	table := NewTable(nil)
	noop := func(*Call) {}

	require.NoError(t, table.Bind(opShow, Append, noop))
	require.NoError(t, table.Bind(opShow, Prepend, noop))

	err := table.Bind(opShow, Append, noop)
	require.ErrorIs(t, err, ErrDuplicateBinding)

	require.Error(t, table.Bind(opShow, Mode(7), noop))
	require.Error(t, table.Bind(opShow, Replace, nil))

	assert.Len(t, table.Bindings(), 2)
}

func TestBindAfterActivate(t *testing.T) {
	table := NewTable(nil)
	require.NoError(t, table.Activate(bridgetest.NewRecorder()))

	assert.True(t, table.Active())
	require.ErrorIs(t, table.Bind(opShow, Append, func(*Call) {}), ErrActive)
	require.ErrorIs(t, table.Activate(bridgetest.NewRecorder()), ErrActive)
	require.Error(t, NewTable(nil).Activate(nil))
}

func TestInvokeOrder(t *testing.T) {
	table := NewTable(nil)

	var order []string

	require.NoError(t, table.Bind(opShow, Prepend, func(c *Call) { order = append(order, "prepend") }))
	require.NoError(t, table.Bind(opShow, Append, func(c *Call) {
		order = append(order, "append")
		c.Result = c.Result.(int) + 1
	}))
	require.NoError(t, table.Activate(bridgetest.NewRecorder()))

	got := table.Invoke(context.Background(), opShow, nil, nil, func() any {
		order = append(order, "original")
		return 41
	})

	assert.Equal(t, 42, got)
	assert.Equal(t, []string{"prepend", "original", "append"}, order)
}

func TestInvokeReplaceSkipsOriginal(t *testing.T) {
	table := NewTable(nil)
	require.NoError(t, table.Bind(opShow, Replace, func(c *Call) { c.Result = "replaced" }))
	require.NoError(t, table.Activate(bridgetest.NewRecorder()))

	called := false
	got := table.Invoke(context.Background(), opShow, nil, nil, func() any {
		called = true
		return "original"
	})

	assert.False(t, called)
	assert.Equal(t, "replaced", got)
}

func TestInvokeInactiveRunsOriginalOnly(t *testing.T) {
	table := NewTable(nil)
	ran := false
	require.NoError(t, table.Bind(opShow, Replace, func(c *Call) { ran = true }))

	got := table.Invoke(context.Background(), opShow, nil, nil, func() any { return 1 })

	assert.Equal(t, 1, got)
	assert.False(t, ran)
	assert.Nil(t, table.Invoke(context.Background(), Op{Owner: "x"}, nil, nil, nil))
}

func TestInvokeContainsPanics(t *testing.T) {
	rec := bridgetest.NewRecorder()
	table := NewTable(nil)
	require.NoError(t, table.Bind(opShow, Prepend, func(c *Call) { panic("boom") }))
	require.NoError(t, table.Activate(rec))

	var got any

	require.NotPanics(t, func() {
		got = table.Invoke(context.Background(), opShow, nil, nil, func() any { return "ok" })
	})

	assert.Equal(t, "ok", got)
	require.Len(t, rec.Errors, 1)
	assert.Contains(t, rec.Errors[0].Error(), "boom")
}

func TestCallGuard(t *testing.T) {
	rec := bridgetest.NewRecorder()
	tag := affinity.NewTag("legacy")

	call := &Call{Ctx: context.Background(), Bridge: rec}
	assert.True(t, call.Skip(), "off the legacy goroutine")

	call.Ctx = tag.Bind(context.Background())
	assert.False(t, call.Skip())

	rec.SetLegacyMode(true)
	assert.True(t, call.Skip(), "legacy mode")
}

func TestArgAccessors(t *testing.T) {
	call := &Call{Receiver: "recv", Args: []any{1.5, "text"}}

	f, ok := Arg[float64](call, 0)
	assert.True(t, ok)
	assert.InDelta(t, 1.5, f, 0)

	_, ok = Arg[int](call, 0)
	assert.False(t, ok)

	_, ok = Arg[string](call, 5)
	assert.False(t, ok)

	s, ok := ReceiverAs[string](call)
	assert.True(t, ok)
	assert.Equal(t, "recv", s)
}
