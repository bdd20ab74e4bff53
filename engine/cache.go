package engine

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/rokoss21/facet-compiler/ast"
)

// Cache stores Pure-lens results keyed by lens name + a stable encoding
// of its input and arguments. Only Pure lenses are ever cached: Bounded
// and Volatile lenses are excluded by trust level at the call site in
// eval.go, never by the cache itself, so a cache implementation never
// has to reason about trust.
type Cache interface {
	Get(ctx context.Context, key string) (ast.Value, bool)
	Set(ctx context.Context, key string, v ast.Value)
}

// MemoryCache is the default in-process cache: a plain guarded map, live
// for one Evaluate call (or reused across calls by a caller that wants
// cross-document caching of pure string/list transforms).
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]ast.Value
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: make(map[string]ast.Value)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (ast.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.store[key]
	return v, ok
}

func (c *MemoryCache) Set(_ context.Context, key string, v ast.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = v
}

// RedisCache shares Pure-lens results across processes and invocations,
// for deployments that compile the same documents repeatedly (e.g. a
// shared template library behind many requests) and want to skip
// re-running expensive-but-pure transforms like hash or json.
type RedisCache struct {
	Client *redis.Client
	Prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "facetc:lens-cache:"
	}
	return &RedisCache{Client: client, Prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) (ast.Value, bool) {
	raw, err := c.Client.Get(ctx, c.Prefix+key).Result()
	if err != nil {
		return nil, false
	}
	var wire cachedValue
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, false
	}
	return wire.toValue(), true
}

func (c *RedisCache) Set(ctx context.Context, key string, v ast.Value) {
	wire := fromValue(v)
	raw, err := json.Marshal(wire)
	if err != nil {
		return
	}
	_ = c.Client.Set(ctx, c.Prefix+key, raw, 0).Err()
}

// cachedValue is a minimal JSON envelope for caching Scalar/String/List/
// Map results, the only shapes Pure lenses in this package ever return.
type cachedValue struct {
	Kind string      `json:"kind"`
	Data interface{} `json:"data"`
}

func fromValue(v ast.Value) cachedValue {
	return cachedValue{Kind: "value", Data: valueToGo(v)}
}

func (c cachedValue) toValue() ast.Value {
	return goToValue(c.Data)
}

func valueToGo(v ast.Value) interface{} {
	switch vv := v.(type) {
	case nil:
		return nil
	case *ast.String:
		return vv.Val
	case *ast.Scalar:
		switch vv.Kind {
		case ast.ScalarInt:
			return vv.IntVal
		case ast.ScalarFloat:
			return vv.FltVal
		case ast.ScalarBool:
			return vv.BoolVal
		default:
			return nil
		}
	case *ast.List:
		out := make([]interface{}, len(vv.Items))
		for i, it := range vv.Items {
			out[i] = valueToGo(it)
		}
		return out
	case *ast.Map:
		out := make(map[string]interface{}, len(vv.Keys))
		for _, k := range vv.Keys {
			out[k] = valueToGo(vv.Entries[k])
		}
		return out
	default:
		return nil
	}
}

func goToValue(v interface{}) ast.Value {
	switch vv := v.(type) {
	case nil:
		return &ast.Scalar{Kind: ast.ScalarNull}
	case string:
		return &ast.String{Val: vv}
	case bool:
		return &ast.Scalar{Kind: ast.ScalarBool, BoolVal: vv}
	case float64:
		if vv == float64(int64(vv)) {
			return &ast.Scalar{Kind: ast.ScalarInt, IntVal: int64(vv)}
		}
		return &ast.Scalar{Kind: ast.ScalarFloat, FltVal: vv}
	case []interface{}:
		items := make([]ast.Value, len(vv))
		for i, it := range vv {
			items[i] = goToValue(it)
		}
		return &ast.List{Items: items}
	case map[string]interface{}:
		m := ast.NewMap(ast.Span{})
		for k, val := range vv {
			m.Set(k, goToValue(val))
		}
		return m
	default:
		return &ast.Scalar{Kind: ast.ScalarNull}
	}
}
