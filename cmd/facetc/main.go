// Command facetc compiles a FACET source document to its canonical JSON
// payload, or runs its @test blocks and reports the results.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rokoss21/facet-compiler/config"
	"github.com/rokoss21/facet-compiler/facet"
	"github.com/rokoss21/facet-compiler/parser"
	"github.com/rokoss21/facet-compiler/resolver"
	"github.com/rokoss21/facet-compiler/telemetry"
	"github.com/rokoss21/facet-compiler/testrunner"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a facetc.yaml config file")
		runTests   = flag.Bool("test", false, "run @test blocks instead of compiling")
		reportFmt  = flag.String("report", "", "test report format override: json or junit")
		pretty     = flag.Bool("pretty", true, "pretty-print JSON output")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <source.facet>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		must(err)
		cfg = loaded
	}

	src, err := os.ReadFile(flag.Arg(0))
	must(err)

	if *runTests {
		runTestMode(cfg, string(src), *reportFmt, *pretty)
		return
	}

	payload, findings, err := facet.Compile(context.Background(), string(src), facet.Options{Config: cfg})
	must(err)
	for _, f := range findings {
		fmt.Fprintln(os.Stderr, f.Error())
	}
	must(writeJSON(os.Stdout, payload, *pretty))
}

func runTestMode(cfg config.Config, src, reportFmt string, pretty bool) {
	doc, err := parser.Parse(src)
	must(err)
	resolved, err := resolver.New(resolver.Config{
		AllowedRoots: cfg.Resolver.AllowedRoots,
		BaseDir:      cfg.Resolver.BaseDir,
		ReadTimeout:  cfg.Resolver.ReadTimeout,
	}, telemetry.NewNoopBundle()).Resolve(context.Background(), doc)
	must(err)

	results := testrunner.RunAll(context.Background(), resolved, testrunner.Options{
		GasLimit: cfg.Engine.GasLimit,
		Budget:   cfg.BoxModel.DefaultBudget,
	})
	report := testrunner.NewReport(results)

	format := reportFmt
	if format == "" {
		format = cfg.TestRunner.ReportFormat
	}
	out, err := report.Render(format, pretty || cfg.TestRunner.Pretty)
	must(err)
	os.Stdout.Write(out)
	fmt.Println()

	if !report.Passed() {
		os.Exit(1)
	}
}

func writeJSON(w *os.File, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "facetc:", err)
		os.Exit(1)
	}
}
