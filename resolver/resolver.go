package resolver

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/parser"
	"github.com/rokoss21/facet-compiler/telemetry"
)

// Resolver expands @import directives into the blocks they reference,
// recursively, with cycle detection and DAG-join deduplication.
type Resolver struct {
	cfg    Config
	bundle telemetry.Bundle

	stack   []string        // canonical paths currently being processed
	visited map[string]bool // canonical paths fully processed already
}

// New constructs a Resolver. Pass telemetry.NewNoopBundle() when no
// observability backend is wired.
func New(cfg Config, bundle telemetry.Bundle) *Resolver {
	return &Resolver{cfg: cfg, bundle: bundle, visited: make(map[string]bool)}
}

// Resolve expands every Import node in doc, recursively, returning a new
// Document with no Import nodes remaining and Smart Merge applied to
// same-role repeated blocks.
func (r *Resolver) Resolve(ctx context.Context, doc *ast.Document) (*ast.Document, error) {
	ctx, span := r.bundle.Tracer.Start(ctx, "resolver.Resolve")
	defer span.End()

	blocks, err := r.resolveBlocks(ctx, doc.Blocks)
	if err != nil {
		return nil, err
	}
	merged := MergeBlocks(blocks)
	return &ast.Document{Blocks: merged, Span_: doc.Span_}, nil
}

func (r *Resolver) resolveBlocks(ctx context.Context, blocks []ast.TopLevel) ([]ast.TopLevel, error) {
	var out []ast.TopLevel
	for _, b := range blocks {
		imp, ok := b.(*ast.Import)
		if !ok {
			out = append(out, b)
			continue
		}
		expanded, err := r.resolveImport(ctx, imp)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

func (r *Resolver) resolveImport(ctx context.Context, imp *ast.Import) ([]ast.TopLevel, error) {
	canonical, err := r.resolvePath(imp.Path)
	if err != nil {
		return nil, err
	}

	for _, onStack := range r.stack {
		if onStack == canonical {
			cycle := append(append([]string{}, r.stack...), canonical)
			return nil, errImportCycle(relativizeAll(cycle, r.cfg.BaseDir))
		}
	}
	if r.visited[canonical] {
		// DAG join: already fully processed elsewhere, contributes no
		// further blocks per spec.md §4.2.
		return nil, nil
	}

	src, err := r.readFileWithTimeout(ctx, canonical)
	if err != nil {
		return nil, err
	}

	subDoc, perr := parser.Parse(src)
	if perr != nil {
		return nil, perr
	}

	r.stack = append(r.stack, canonical)
	prevBase := r.cfg.BaseDir
	r.cfg.BaseDir = filepath.Dir(canonical)

	blocks, err := r.resolveBlocks(ctx, subDoc.Blocks)

	r.cfg.BaseDir = prevBase
	r.stack = r.stack[:len(r.stack)-1]
	r.visited[canonical] = true

	if err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *Resolver) readFileWithTimeout(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := os.ReadFile(path)
		ch <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return "", errFileReadTimeout(path)
	case res := <-ch:
		if res.err != nil {
			return "", errImportNotFound(path)
		}
		return string(res.data), nil
	}
}

func relativizeAll(paths []string, base string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if rel, err := filepath.Rel(base, p); err == nil {
			out[i] = rel
		} else {
			out[i] = p
		}
	}
	return out
}
