package testrunner

import "github.com/rokoss21/facet-compiler/ast"

// goToMap boxes a plain Go map (as ToolExecutor hands to a ToolHandler)
// into an *ast.Map so mock handlers see the same Value shapes the rest
// of the pipeline does.
func goToMap(args map[string]interface{}) *ast.Map {
	m := ast.NewMap(ast.Span{})
	for k, v := range args {
		m.Set(k, goToValue(v))
	}
	return m
}

func goToValue(v interface{}) ast.Value {
	switch vv := v.(type) {
	case nil:
		return &ast.Scalar{Kind: ast.ScalarNull}
	case string:
		return &ast.String{Val: vv}
	case bool:
		return &ast.Scalar{Kind: ast.ScalarBool, BoolVal: vv}
	case int:
		return &ast.Scalar{Kind: ast.ScalarInt, IntVal: int64(vv)}
	case int64:
		return &ast.Scalar{Kind: ast.ScalarInt, IntVal: vv}
	case float64:
		return &ast.Scalar{Kind: ast.ScalarFloat, FltVal: vv}
	case []interface{}:
		items := make([]ast.Value, len(vv))
		for i, item := range vv {
			items[i] = goToValue(item)
		}
		return &ast.List{Items: items}
	case map[string]interface{}:
		return goToMap(vv)
	default:
		return &ast.String{Val: ""}
	}
}

// valueToGo unboxes an ast.Value back into a plain Go value, the
// inverse of goToValue, so a mocked tool result can flow back through
// ToolExecutor's interface{}-shaped return.
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
		for i, item := range vv.Items {
			out[i] = valueToGo(item)
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
