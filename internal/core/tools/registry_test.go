package tools_test

import (
	"context"
	"testing"

	"github.com/colonyops/briefly/internal/core/tools"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(name string) *tools.Tool {
	return &tools.Tool{
		Name:        name,
		Description: "echoes its argument",
		Schema: tools.Schema{
			Required: []string{"text"},
			Properties: map[string]tools.Property{
				"text": {Type: "string", Description: "text to echo"},
			},
		},
		Handler: func(_ context.Context, _ tools.Session, args tools.Args) tools.Result {
			return tools.Ok(args.String("text", ""))
		},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := tools.NewRegistry(zerolog.Nop())

	require.NoError(t, reg.Register(echoTool("echo")))
	assert.True(t, reg.Has("echo"))
	assert.NotNil(t, reg.Get("echo"))
	assert.Equal(t, 1, reg.Count())

	err := reg.Register(echoTool("echo"))
	require.Error(t, err)
	assert.ErrorIs(t, err, tools.ErrToolAlreadyRegistered)
}

func TestRegistry_RejectsInvalidTools(t *testing.T) {
	reg := tools.NewRegistry(zerolog.Nop())

	err := reg.Register(&tools.Tool{Name: ""})
	assert.ErrorIs(t, err, tools.ErrToolNameEmpty)

	err = reg.Register(&tools.Tool{Name: "broken"})
	assert.ErrorIs(t, err, tools.ErrToolHandlerNil)
}

func TestRegistry_ExecuteUnknownTool(t *testing.T) {
	reg := tools.NewRegistry(zerolog.Nop())

	res, err := reg.Execute(context.Background(), nil, "nope", tools.Args{})
	require.ErrorIs(t, err, tools.ErrToolNotFound)
	assert.False(t, res.Success)
	assert.Equal(t, "nope", res.Tool)
	assert.Contains(t, res.Message, "unknown tool")
}

func TestRegistry_ExecuteValidatesArgs(t *testing.T) {
	reg := tools.NewRegistry(zerolog.Nop())
	require.NoError(t, reg.Register(echoTool("echo")))

	res, err := reg.Execute(context.Background(), nil, "echo", tools.Args{})
	require.ErrorIs(t, err, tools.ErrMissingRequiredArg)
	assert.False(t, res.Success)

	res, err = reg.Execute(context.Background(), nil, "echo", tools.Args{"text": 42})
	require.ErrorIs(t, err, tools.ErrInvalidArgType)
	assert.False(t, res.Success)

	res, err = reg.Execute(context.Background(), nil, "echo", tools.Args{"text": "hi"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "hi", res.Message)
	assert.Equal(t, "echo", res.Tool)
}

func TestArgs_TypedGetters(t *testing.T) {
	args := tools.Args{
		"name":  "alpha",
		"count": float64(3),
		"exact": 7,
		"flag":  true,
	}

	assert.Equal(t, "alpha", args.String("name", "x"))
	assert.Equal(t, "x", args.String("missing", "x"))
	assert.Equal(t, 3, args.Int("count", 0))
	assert.Equal(t, 7, args.Int("exact", 0))
	assert.Equal(t, 9, args.Int("missing", 9))
	assert.True(t, args.Bool("flag", false))
	assert.False(t, args.Bool("missing", false))

	// Wrong types fall back rather than panic.
	assert.Equal(t, "x", args.String("count", "x"))
	assert.Equal(t, 5, args.Int("name", 5))
}
