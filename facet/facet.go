// Package facet is the top-level compilation facade: it wires the
// parser, resolver, validator, R-DAG engine, Token Box Model allocator,
// and renderer into the single Compile entry point a CLI or embedding
// application calls.
package facet

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/rokoss21/facet-compiler/boxmodel"
	"github.com/rokoss21/facet-compiler/config"
	"github.com/rokoss21/facet-compiler/engine"
	"github.com/rokoss21/facet-compiler/lens"
	"github.com/rokoss21/facet-compiler/parser"
	"github.com/rokoss21/facet-compiler/render"
	"github.com/rokoss21/facet-compiler/resolver"
	"github.com/rokoss21/facet-compiler/telemetry"
	"github.com/rokoss21/facet-compiler/tokenize"
	"github.com/rokoss21/facet-compiler/validate"
)

// Options configures one Compile call. A zero Options is usable: every
// field falls back to config.Default()'s values and a noop telemetry
// bundle.
type Options struct {
	Config    config.Config
	Telemetry telemetry.Bundle
	Registry  *lens.Registry // override, e.g. with test mocks installed
	Now       time.Time      // payload Metadata.CreatedAt; time.Now() if zero
}

// Compile runs the full pipeline over source text: parse, resolve
// imports, statically validate, evaluate the R-DAG, allocate the Token
// Box Model, and render the canonical payload. Validator findings are
// returned alongside a successful payload rather than aborting
// compilation — they are diagnostics, not fatal per spec.md's error
// disposition rules (only parser, resolver, and engine errors halt the
// pipeline outright).
func Compile(ctx context.Context, source string, opts Options) (*render.Payload, []*validate.Error, error) {
	cfg := opts.Config
	if cfg.Engine.GasLimit == 0 && cfg.BoxModel.DefaultBudget == 0 {
		cfg = config.Default()
	}
	bundle := opts.Telemetry
	if bundle.Tracer == nil {
		bundle = telemetry.NewNoopBundle()
	}
	registry := opts.Registry
	if registry == nil {
		registry = buildRegistry(cfg)
	}

	doc, err := parser.Parse(source)
	if err != nil {
		return nil, nil, err
	}

	res := resolver.New(resolver.Config{
		AllowedRoots: cfg.Resolver.AllowedRoots,
		BaseDir:      cfg.Resolver.BaseDir,
		ReadTimeout:  cfg.Resolver.ReadTimeout,
	}, bundle)
	resolved, err := res.Resolve(ctx, doc)
	if err != nil {
		return nil, nil, err
	}

	findings := validate.Validate(resolved, registry)

	vars, order := engine.VarsTable(resolved)
	cache := cacheFor(cfg)
	evalResult, err := engine.Evaluate(ctx, vars, order, engine.Options{
		Registry:  registry,
		GasLimit:  cfg.Engine.GasLimit,
		Cache:     cache,
		Telemetry: bundle,
	})
	if err != nil {
		return nil, findings, err
	}

	counter := tokenize.New()
	sections, interfaces, err := sectionsFromDocument(resolved, counter)
	if err != nil {
		return nil, findings, err
	}
	reduced := make([]boxmodel.Section, len(sections))
	for i, sec := range sections {
		content, err := engine.ReduceValue(ctx, sec.Content, evalResult.Variables, engine.Options{
			Registry: registry, GasLimit: cfg.Engine.GasLimit, Cache: cache, Telemetry: bundle,
		}, evalResult.Gas)
		if err != nil {
			return nil, findings, err
		}
		sec.Content = content
		sec.BaseSize = counter.CountValue(content)
		reduced[i] = sec
	}

	budget := cfg.BoxModel.DefaultBudget
	alloc, err := boxmodel.Allocate(reduced, budget, registry, counter)
	if err != nil {
		return nil, findings, err
	}

	createdAt := opts.Now
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	payload, err := render.Render(render.DocName(resolved), alloc, interfaces, createdAt)
	if err != nil {
		return nil, findings, err
	}
	return payload, findings, nil
}

func cacheFor(cfg config.Config) engine.Cache {
	if cfg.Engine.Cache == "redis" && cfg.Engine.RedisURL != "" {
		if opt, err := redis.ParseURL(cfg.Engine.RedisURL); err == nil {
			return engine.NewRedisCache(redis.NewClient(opt), "facetc:lens-cache:")
		}
	}
	return engine.NewMemoryCache()
}

func buildRegistry(cfg config.Config) *lens.Registry {
	registry := lens.NewDefaultRegistry()
	if cfg.Lenses.AnthropicAPIKey == "" && cfg.Lenses.OpenAIAPIKey == "" && cfg.Lenses.EmbeddingAPIKey == "" {
		return registry
	}
	rps := cfg.Lenses.RateLimitRPS
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.Lenses.RateLimitBurst
	if burst <= 0 {
		burst = 5
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	var completion lens.CompletionClient
	if cfg.Lenses.AnthropicAPIKey != "" {
		completion = lens.NewAnthropicCompletionClient(cfg.Lenses.AnthropicAPIKey)
	} else if cfg.Lenses.OpenAIAPIKey != "" {
		completion = lens.NewOpenAICompletionClient(cfg.Lenses.OpenAIAPIKey)
	}

	var embed lens.EmbeddingClient
	var retrieval lens.RetrievalClient
	if cfg.Lenses.EmbeddingAPIKey != "" {
		oaiEmbed := lens.NewOpenAIEmbeddingClient(cfg.Lenses.EmbeddingAPIKey)
		embed = oaiEmbed
		if cfg.Lenses.RAGEnabled {
			retrieval = lens.NewInMemoryRetrievalClient(oaiEmbed, cfg.Lenses.EmbeddingModel)
		}
	}

	for _, l := range lens.BoundedLenses(completion, embed, retrieval, limiter) {
		registry.Register(l)
	}
	return registry
}
