package facet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rokoss21/facet-compiler/config"
	"github.com/rokoss21/facet-compiler/facet"
)

const sampleDoc = `@meta(name="greeter")

@var_types
  name: string

@vars
  name: "Ada"
  greeting: $name |> uppercase

@system(priority=0, grow=1, shrink=1, min=5)
  persona: "You are a helpful assistant."

@user(priority=1, grow=1, shrink=0)
  message: $greeting
`

func TestCompileEndToEnd(t *testing.T) {
	cfg := config.Default()
	cfg.BoxModel.DefaultBudget = 4096
	payload, findings, err := facet.Compile(context.Background(), sampleDoc, facet.Options{Config: cfg})
	require.NoError(t, err)
	require.Empty(t, findings)
	require.Equal(t, "greeter", payload.Metadata.Name)
	require.Len(t, payload.System, 1)
	require.Equal(t, "You are a helpful assistant.", payload.System[0].Text)
	require.Len(t, payload.User, 1)
	require.Equal(t, "ADA", payload.User[0].Text)
}

func TestCompileReportsValidatorFindingsWithoutFailing(t *testing.T) {
	doc := `@var_types
  age: int

@vars
  age: "old"

@system
  persona: $age
`
	payload, findings, err := facet.Compile(context.Background(), doc, facet.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, findings)
	require.NotNil(t, payload)
}

func TestCompileSurfacesParserErrors(t *testing.T) {
	_, _, err := facet.Compile(context.Background(), "not a valid facet document {{{", facet.Options{})
	require.Error(t, err)
}
