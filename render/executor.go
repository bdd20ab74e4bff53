package render

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ToolHandler invokes a registered tool with its decoded arguments.
type ToolHandler func(args map[string]interface{}) (interface{}, error)

// ToolResult is returned for every invocation, successful or not;
// failures are captured in Error rather than returned as a Go error, so
// a batch of tool calls can be reported uniformly.
type ToolResult struct {
	ToolName     string      `json:"tool_name"`
	Result       interface{} `json:"result,omitempty"`
	Error        string      `json:"error,omitempty"`
	InvocationID string      `json:"invocation_id"`
}

// ToolExecutor holds registered tool definitions and their handlers. It
// rejects double registration and requires a handler before invocation,
// per spec.md §6.2.
type ToolExecutor struct {
	mu       sync.Mutex
	defs     map[string]ToolDefinition
	handlers map[string]ToolHandler
	schemas  map[string]*jsonschema.Schema
}

// NewToolExecutor returns an empty executor.
func NewToolExecutor() *ToolExecutor {
	return &ToolExecutor{
		defs:     make(map[string]ToolDefinition),
		handlers: make(map[string]ToolHandler),
		schemas:  make(map[string]*jsonschema.Schema),
	}
}

// Register installs a tool definition. Registering the same name twice
// is rejected outright, since a silently-replaced tool definition would
// change a running agent's contract out from under it.
func (e *ToolExecutor) Register(def ToolDefinition) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.defs[def.Name]; exists {
		return fmt.Errorf("render: tool %q is already registered", def.Name)
	}
	compiler := jsonschema.NewCompiler()
	url := "facetc://tool/" + def.Name
	if def.InputSchema != nil {
		if err := compiler.AddResource(url, def.InputSchema); err != nil {
			return fmt.Errorf("render: invalid input schema for tool %q: %w", def.Name, err)
		}
		sch, err := compiler.Compile(url)
		if err != nil {
			return fmt.Errorf("render: compiling input schema for tool %q: %w", def.Name, err)
		}
		e.schemas[def.Name] = sch
	}
	e.defs[def.Name] = def
	return nil
}

// Bind installs the handler invoked for a registered tool.
func (e *ToolExecutor) Bind(name string, handler ToolHandler) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.defs[name]; !exists {
		return fmt.Errorf("render: cannot bind handler for unregistered tool %q", name)
	}
	e.handlers[name] = handler
	return nil
}

// Invoke validates args against the tool's input schema (if any), then
// calls its handler. A missing handler, a missing tool, or a schema
// validation failure all surface as a populated Error field rather than
// a Go error — every call produces a ToolResult.
func (e *ToolExecutor) Invoke(name string, args map[string]interface{}) ToolResult {
	id := uuid.NewString()
	e.mu.Lock()
	_, registered := e.defs[name]
	handler, bound := e.handlers[name]
	schema := e.schemas[name]
	e.mu.Unlock()

	if !registered {
		return ToolResult{ToolName: name, Error: fmt.Sprintf("unknown tool %q", name), InvocationID: id}
	}
	if !bound {
		return ToolResult{ToolName: name, Error: fmt.Sprintf("no handler registered for tool %q", name), InvocationID: id}
	}
	if schema != nil {
		if err := schema.Validate(toAnySchemaInstance(args)); err != nil {
			return ToolResult{ToolName: name, Error: fmt.Sprintf("argument validation failed: %v", err), InvocationID: id}
		}
	}
	result, err := handler(args)
	if err != nil {
		return ToolResult{ToolName: name, Error: err.Error(), InvocationID: id}
	}
	return ToolResult{ToolName: name, Result: result, InvocationID: id}
}

// toAnySchemaInstance re-keys a map[string]interface{} into the bare
// any the jsonschema validator expects, guarding against nil.
func toAnySchemaInstance(args map[string]interface{}) interface{} {
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}
