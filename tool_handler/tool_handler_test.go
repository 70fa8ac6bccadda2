package toolhandler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTool struct {
	name   string
	result any
}

func (t *staticTool) Spec() ToolSpec {
	return ToolSpec{Name: t.name, Description: t.name}
}

func (t *staticTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	return t.result, nil
}

func TestRegistryDispatchesByName(t *testing.T) {
	r := NewRegistry(
		&staticTool{name: "first", result: 1},
		&staticTool{name: "second", result: 2},
	)

	result, err := r.Invoke(context.Background(), "second", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result)
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry(&staticTool{name: "only"})

	_, err := r.Invoke(context.Background(), "missing", nil)
	assert.ErrorContains(t, err, "unknown tool")
}

func TestRegistrySpecsPreserveOrder(t *testing.T) {
	r := NewRegistry(
		&staticTool{name: "b"},
		&staticTool{name: "a"},
		&staticTool{name: "b", result: "duplicate ignored"},
	)

	specs := r.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, "b", specs[0].Name)
	assert.Equal(t, "a", specs[1].Name)
}
