package render

import "github.com/rokoss21/facet-compiler/ast"

// ToolDefinition is the provider-agnostic shape from spec.md §6.2.
type ToolDefinition struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	InputSchema  map[string]interface{} `json:"input_schema"`
	OutputSchema map[string]interface{} `json:"output_schema,omitempty"`
}

// FromInterface projects an @interface block's function signatures into
// tool definitions, one per function, parameters gathered into a single
// JSON-schema object.
func FromInterface(iface *ast.Interface) []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(iface.Functions))
	for _, fn := range iface.Functions {
		props := make(map[string]interface{}, len(fn.Params))
		required := make([]interface{}, 0, len(fn.Params))
		for _, p := range fn.Params {
			props[p.Name] = typeNodeToJSONSchema(p.Type)
			required = append(required, p.Name)
		}
		defs = append(defs, ToolDefinition{
			Name:        iface.Name + "." + fn.Name,
			Description: "",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": props,
				"required":   required,
			},
		})
	}
	return defs
}

// typeNodeToJSONSchema projects a syntax-level TypeNode to a JSON Schema
// fragment. Primitive types map to their lowercase JSON-schema names
// (the original implementation this was distilled from emitted
// Title-cased type names here, a latent bug since no JSON-schema
// validator recognizes "String" as a type — this projects the lowercase
// forms real validators expect). Anything that is not a bare primitive
// degrades to the {"type":"complex"} sentinel per spec.md §4.8, rather
// than attempting a full structural projection.
func typeNodeToJSONSchema(t ast.TypeNode) map[string]interface{} {
	prim, ok := t.(ast.PrimitiveTypeNode)
	if !ok {
		return map[string]interface{}{"type": "complex"}
	}
	switch prim.Name {
	case "string", "String":
		return map[string]interface{}{"type": "string"}
	case "number", "Number", "int", "Int", "float", "Float":
		return map[string]interface{}{"type": "number"}
	case "boolean", "Boolean", "bool", "Bool":
		return map[string]interface{}{"type": "boolean"}
	case "null", "Null":
		return map[string]interface{}{"type": "null"}
	default:
		return map[string]interface{}{"type": "complex"}
	}
}

// OpenAIToolDefinition is the {"type":"function","function":{...}} shape
// both OpenAI and Llama dialects use.
type OpenAIToolDefinition struct {
	Type     string `json:"type"`
	Function struct {
		Name        string                 `json:"name"`
		Description string                 `json:"description"`
		Parameters  map[string]interface{} `json:"parameters"`
	} `json:"function"`
}

// ToOpenAIDialect projects tool definitions into the OpenAI/Llama shape.
func ToOpenAIDialect(defs []ToolDefinition) []OpenAIToolDefinition {
	out := make([]OpenAIToolDefinition, len(defs))
	for i, d := range defs {
		out[i].Type = "function"
		out[i].Function.Name = d.Name
		out[i].Function.Description = d.Description
		out[i].Function.Parameters = d.InputSchema
	}
	return out
}

// AnthropicToolDefinition is Anthropic's {name, description, input_schema} shape.
type AnthropicToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// ToAnthropicDialect projects tool definitions into the Anthropic shape.
func ToAnthropicDialect(defs []ToolDefinition) []AnthropicToolDefinition {
	out := make([]AnthropicToolDefinition, len(defs))
	for i, d := range defs {
		out[i] = AnthropicToolDefinition{Name: d.Name, Description: d.Description, InputSchema: d.InputSchema}
	}
	return out
}

// ToLlamaDialect is identical in shape to OpenAI per spec.md §6.2.
func ToLlamaDialect(defs []ToolDefinition) []OpenAIToolDefinition {
	return ToOpenAIDialect(defs)
}
