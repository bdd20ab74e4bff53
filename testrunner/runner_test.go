package testrunner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/parser"
	"github.com/rokoss21/facet-compiler/testrunner"
)

const weatherDoc = `@meta(name="weather-bot")

@interface(name="WeatherAPI")
  get_current(city: string) -> string

@vars
  city: "Paris"

@system
  persona: "You report the weather."

@user
  message: $city

@test(name="reports sunny weather")
  mock:
    WeatherAPI.get_current: "Sunny and 25C"
  assert:
    output contains "Paris"
`

func TestRunDiscoversAndPasses(t *testing.T) {
	doc, err := parser.Parse(weatherDoc)
	require.NoError(t, err)

	tests := testrunner.Discover(doc)
	require.Len(t, tests, 1)
	require.Equal(t, "reports sunny weather", tests[0].Name)

	result := testrunner.Run(context.Background(), doc, tests[0], testrunner.Options{})
	require.Empty(t, result.Error)
	require.True(t, result.Passed, "assertions: %+v", result.Assertions)
	require.Contains(t, result.RenderedOutput, "Paris")
}

const mockedLensDoc = `@vars
  greeting: "hi" |> shout

@system
  message: $greeting

@test(name="lens mock overrides shout")
  mock:
    shout: "MOCKED"
  assert:
    output contains "MOCKED"
`

func TestRunMocksLensAndCountsCalls(t *testing.T) {
	doc, err := parser.Parse(mockedLensDoc)
	require.NoError(t, err)
	tests := testrunner.Discover(doc)
	require.Len(t, tests, 1)

	result := testrunner.Run(context.Background(), doc, tests[0], testrunner.Options{})
	require.Empty(t, result.Error)
	require.True(t, result.Passed, "assertions: %+v", result.Assertions)
	require.GreaterOrEqual(t, result.MockCallCounts["shout"], 1)
}

const varOverrideDoc = `@vars
  name: "default"

@system
  message: $name

@test(name="override applies post evaluation")
  vars:
    name: "overridden"
  assert:
    output contains "overridden"
`

func TestRunAppliesVarOverrides(t *testing.T) {
	doc, err := parser.Parse(varOverrideDoc)
	require.NoError(t, err)
	tests := testrunner.Discover(doc)
	require.Len(t, tests, 1)

	result := testrunner.Run(context.Background(), doc, tests[0], testrunner.Options{})
	require.Empty(t, result.Error)
	require.True(t, result.Passed)
}

func TestRunShortCircuitsOnPipelineError(t *testing.T) {
	doc := &ast.Document{
		Blocks: []ast.TopLevel{
			&ast.Block{Kind: ast.BlockVars, Name: "vars", Body: []ast.BodyItem{
				&ast.KeyValue{Key: "x", Value: &ast.Variable{Name: "does_not_exist"}},
			}},
		},
	}
	test := &ast.Test{Name: "broken"}
	result := testrunner.Run(context.Background(), doc, test, testrunner.Options{})
	require.NotEmpty(t, result.Error)
	require.False(t, result.Passed)
	require.Empty(t, result.Assertions)
}

func TestReportRendersJSONAndJUnit(t *testing.T) {
	doc, err := parser.Parse(weatherDoc)
	require.NoError(t, err)
	results := testrunner.RunAll(context.Background(), doc, testrunner.Options{})
	report := testrunner.NewReport(results)
	require.True(t, report.Passed())

	js, err := report.JSON(true)
	require.NoError(t, err)
	require.Contains(t, string(js), "reports sunny weather")

	xmlBytes, err := report.JUnit()
	require.NoError(t, err)
	require.Contains(t, string(xmlBytes), "<testsuite")
}

func TestSentimentClassifiesKeywords(t *testing.T) {
	require.Equal(t, "positive", testrunner.Sentiment("this is a wonderful and great day"))
	require.Equal(t, "negative", testrunner.Sentiment("this is a terrible and awful outcome"))
	require.Equal(t, "neutral", testrunner.Sentiment("the table has four legs"))
}
