package lens

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	oai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbeddingClient adapts the OpenAI embeddings endpoint to
// EmbeddingClient, the only concrete embedding backend the pack's
// dependency set provides.
type OpenAIEmbeddingClient struct {
	Client *oai.Client
}

func NewOpenAIEmbeddingClient(apiKey string) *OpenAIEmbeddingClient {
	return &OpenAIEmbeddingClient{Client: oai.NewClient(apiKey)}
}

func (c *OpenAIEmbeddingClient) Embed(ctx context.Context, model, text string) ([]float64, error) {
	if model == "" || model == "default" {
		model = string(oai.AdaEmbeddingV2)
	}
	resp, err := c.Client.CreateEmbeddings(ctx, oai.EmbeddingRequest{
		Input: []string{text},
		Model: oai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embedding: empty response")
	}
	vec := make([]float64, len(resp.Data[0].Embedding))
	for i, f := range resp.Data[0].Embedding {
		vec[i] = float64(f)
	}
	return vec, nil
}

// InMemoryRetrievalClient backs rag_search with a flat, in-process
// cosine-similarity index over documents added via Index. The examples
// pack carries no dedicated vector-store client (no pgvector, Qdrant,
// or Pinecone SDK among the teacher's or the wider pack's
// dependencies), so this is deliberately the standard-library fallback
// for an otherwise-Bounded lens: it still goes through the same
// rate-limited, mockable RetrievalClient seam BoundedLenses expects,
// it just has nothing further to import.
type InMemoryRetrievalClient struct {
	embed EmbeddingClient
	model string

	mu      sync.RWMutex
	byIndex map[string][]indexedDoc
}

type indexedDoc struct {
	text string
	vec  []float64
}

// NewInMemoryRetrievalClient builds a retrieval client that embeds
// queries and indexed documents with the given EmbeddingClient before
// ranking by cosine similarity.
func NewInMemoryRetrievalClient(embed EmbeddingClient, model string) *InMemoryRetrievalClient {
	return &InMemoryRetrievalClient{embed: embed, model: model, byIndex: make(map[string][]indexedDoc)}
}

// Index adds a document's text to a named index, embedding it
// immediately so later Search calls only pay the query-side embedding
// cost.
func (c *InMemoryRetrievalClient) Index(ctx context.Context, index, text string) error {
	vec, err := c.embed.Embed(ctx, c.model, text)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byIndex[index] = append(c.byIndex[index], indexedDoc{text: text, vec: vec})
	return nil
}

func (c *InMemoryRetrievalClient) Search(ctx context.Context, index, query string, topK int) ([]RetrievalResult, error) {
	qvec, err := c.embed.Embed(ctx, c.model, query)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	docs := append([]indexedDoc(nil), c.byIndex[index]...)
	c.mu.RUnlock()

	results := make([]RetrievalResult, len(docs))
	for i, d := range docs {
		results[i] = RetrievalResult{Text: d.text, Score: cosineSimilarity(qvec, d.vec)}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
