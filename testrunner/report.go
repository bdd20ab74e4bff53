package testrunner

import (
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/google/uuid"
)

// Report wraps a full test run: a generated run identifier (so separate
// CI invocations of the same suite are distinguishable in stored
// reports) plus every TestResult, in Discover order.
type Report struct {
	RunID   string        `json:"run_id"`
	Results []*TestResult `json:"results"`
}

// NewReport stamps a fresh run identifier over a batch of results.
func NewReport(results []*TestResult) Report {
	return Report{RunID: uuid.NewString(), Results: results}
}

// Passed reports whether every test in the report passed.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// JSON renders the report as compact or pretty JSON depending on
// pretty.
func (r Report) JSON(pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(r, "", "  ")
	}
	return json.Marshal(r)
}

// junitTestsuite is the minimal JUnit XML shape CI tooling expects: one
// <testsuite> with one <testcase> per TestResult, a <failure> element
// for any unmet assertion or pipeline error, and no color codes or
// terminal escapes anywhere in the output.
type junitTestsuite struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestcase `xml:"testcase"`
}

type junitTestcase struct {
	Name    string        `xml:"name,attr"`
	Time    string        `xml:"time,attr"`
	Failure *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// JUnit renders the report as JUnit XML.
func (r Report) JUnit() ([]byte, error) {
	suite := junitTestsuite{Name: r.RunID, Tests: len(r.Results)}
	for _, res := range r.Results {
		tc := junitTestcase{
			Name: res.Name,
			Time: fmt.Sprintf("%.3f", float64(res.Telemetry.ExecutionTimeMS)/1000),
		}
		if !res.Passed {
			suite.Failures++
			tc.Failure = &junitFailure{Message: failureMessage(res), Body: failureBody(res)}
		}
		suite.Cases = append(suite.Cases, tc)
	}
	out, err := xml.MarshalIndent(suite, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func failureMessage(res *TestResult) string {
	if res.Error != "" {
		return res.Error
	}
	return "assertion failed"
}

func failureBody(res *TestResult) string {
	if res.Error != "" {
		return res.Error
	}
	body := ""
	for _, a := range res.Assertions {
		if !a.Passed {
			body += fmt.Sprintf("[%s] target=%s: %s\n", a.Kind, a.Target, a.Message)
		}
	}
	return body
}

// Render dispatches to JSON or JUnit by format ("json" or "junit"),
// defaulting to JSON (compact or pretty, per pretty) for an unrecognized
// format.
func (r Report) Render(format string, pretty bool) ([]byte, error) {
	switch format {
	case "junit":
		return r.JUnit()
	default:
		return r.JSON(pretty)
	}
}
