package lens

import (
	"context"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	oai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/rokoss21/facet-compiler/ast"
)

// Bounded lenses are the only lenses permitted to reach a network. Each
// is backed by a small client-shaped interface so a mock can stand in
// during tests, mirroring the teacher's model.Client adapters, and is
// wrapped in a shared rate limiter since every Bounded invocation the
// R-DAG schedules competes for the same upstream quota.

// CompletionClient is implemented by AnthropicCompletionClient (wrapping
// *sdk.MessageService) and OpenAICompletionClient; llm_call depends only
// on this narrow surface.
type CompletionClient interface {
	Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error)
}

// EmbeddingClient produces a vector embedding for a piece of text.
type EmbeddingClient interface {
	Embed(ctx context.Context, model, text string) ([]float64, error)
}

// RetrievalResult is one retrieved passage and its relevance score.
type RetrievalResult struct {
	Text  string
	Score float64
}

// RetrievalClient backs rag_search, returning the top_k passages most
// relevant to a query from a named index.
type RetrievalClient interface {
	Search(ctx context.Context, index, query string, topK int) ([]RetrievalResult, error)
}

// AnthropicCompletionClient adapts *sdk.MessageService to CompletionClient.
type AnthropicCompletionClient struct {
	Messages *sdk.MessageService
}

// NewAnthropicCompletionClient builds a client from an API key using the
// SDK's default HTTP transport.
func NewAnthropicCompletionClient(apiKey string) *AnthropicCompletionClient {
	c := sdk.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicCompletionClient{Messages: &c.Messages}
}

func (c *AnthropicCompletionClient) Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	msg, err := c.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}
	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out, nil
}

// OpenAICompletionClient adapts the OpenAI chat completions service.
type OpenAICompletionClient struct {
	Client *oai.Client
}

func NewOpenAICompletionClient(apiKey string) *OpenAICompletionClient {
	return &OpenAICompletionClient{Client: oai.NewClient(apiKey)}
}

func (c *OpenAICompletionClient) Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	resp, err := c.Client.CreateChatCompletion(ctx, oai.ChatCompletionRequest{
		Model: model,
		Messages: []oai.ChatCompletionMessage{
			{Role: oai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// BoundedLenses installs llm_call, embedding, and rag_search against the
// given clients, all sharing a single token-bucket limiter. A nil client
// leaves the corresponding lens unregistered rather than installing a
// stub that always errors, so a deployment without RAG infrastructure,
// say, simply never sees "rag_search" in the registry.
func BoundedLenses(completion CompletionClient, embed EmbeddingClient, retrieval RetrievalClient, limiter *rate.Limiter) []Lens {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(5), 5)
	}
	var out []Lens

	if completion != nil {
		out = append(out, newLens("llm_call", Bounded, stringT, []ParamSig{
			param("model", stringT, false), param("temperature", numberT, false), param("max_tokens", numberT, false),
		}, stringT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, lctx *Context) (ast.Value, error) {
			prompt, err := asString(in)
			if err != nil {
				return nil, err
			}
			model := "default"
			if v, ok := namedArg(args, kwargs, "model", 0); ok {
				model, err = asString(v)
				if err != nil {
					return nil, err
				}
			}
			maxTokens := 1024
			if v, ok := namedArg(args, kwargs, "max_tokens", 2); ok {
				maxTokens, err = asInt(v)
				if err != nil {
					return nil, err
				}
			}
			goCtx := contextOf(lctx)
			if err := limiter.Wait(goCtx); err != nil {
				return nil, fmt.Errorf("llm_call: rate limit: %w", err)
			}
			text, err := completion.Complete(goCtx, model, prompt, maxTokens)
			if err != nil {
				return nil, err
			}
			return strVal(text), nil
		}))
	}

	if embed != nil {
		out = append(out, newLens("embedding", Bounded, stringT, []ParamSig{param("model", stringT, false)}, ast.ListType{Elem: numberT},
			func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, lctx *Context) (ast.Value, error) {
				text, err := asString(in)
				if err != nil {
					return nil, err
				}
				model := "default"
				if v, ok := namedArg(args, kwargs, "model", 0); ok {
					model, err = asString(v)
					if err != nil {
						return nil, err
					}
				}
				goCtx := contextOf(lctx)
				if err := limiter.Wait(goCtx); err != nil {
					return nil, fmt.Errorf("embedding: rate limit: %w", err)
				}
				vec, err := embed.Embed(goCtx, model, text)
				if err != nil {
					return nil, err
				}
				items := make([]ast.Value, len(vec))
				for i, f := range vec {
					items[i] = floatVal(f)
				}
				return listVal(items), nil
			}))
	}

	if retrieval != nil {
		out = append(out, newLens("rag_search", Bounded, stringT, []ParamSig{param("index", stringT, true), param("top_k", numberT, false)}, listT,
			func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, lctx *Context) (ast.Value, error) {
				query, err := asString(in)
				if err != nil {
					return nil, err
				}
				indexV, _ := namedArg(args, kwargs, "index", 0)
				index, err := asString(indexV)
				if err != nil {
					return nil, err
				}
				topK := 5
				if v, ok := namedArg(args, kwargs, "top_k", 1); ok {
					topK, err = asInt(v)
					if err != nil {
						return nil, err
					}
				}
				goCtx := contextOf(lctx)
				if err := limiter.Wait(goCtx); err != nil {
					return nil, fmt.Errorf("rag_search: rate limit: %w", err)
				}
				passages, err := retrieval.Search(goCtx, index, query, topK)
				if err != nil {
					return nil, err
				}
				items := make([]ast.Value, len(passages))
				for i, p := range passages {
					m := ast.NewMap(ast.Span{})
					m.Set("text", strVal(p.Text))
					m.Set("score", floatVal(p.Score))
					items[i] = m
				}
				return listVal(items), nil
			}))
	}

	return out
}

func contextOf(lctx *Context) context.Context {
	if lctx == nil || lctx.Go == nil {
		return context.Background()
	}
	return lctx.Go
}
