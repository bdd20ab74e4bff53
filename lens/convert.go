package lens

import "github.com/rokoss21/facet-compiler/ast"

// toGo lowers a Value tree to plain Go data (string/int64/float64/bool/nil/
// []interface{}/map[string]interface{}), the representation
// encoding/json and the render package's schema walker both expect.
func toGo(v ast.Value) interface{} {
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
			out[i] = toGo(it)
		}
		return out
	case *ast.Map:
		out := make(map[string]interface{}, len(vv.Keys))
		for _, k := range vv.Keys {
			out[k] = toGo(vv.Entries[k])
		}
		return out
	default:
		return nil
	}
}

// fromGo lifts plain Go data (as produced by encoding/json.Unmarshal)
// back into the Value tree.
func fromGo(v interface{}) ast.Value {
	switch vv := v.(type) {
	case nil:
		return nullVal()
	case string:
		return strVal(vv)
	case bool:
		return boolVal(vv)
	case float64:
		if vv == float64(int64(vv)) {
			return intVal(int(vv))
		}
		return floatVal(vv)
	case int:
		return intVal(vv)
	case int64:
		return intVal(int(vv))
	case []interface{}:
		items := make([]ast.Value, len(vv))
		for i, it := range vv {
			items[i] = fromGo(it)
		}
		return listVal(items)
	case map[string]interface{}:
		m := ast.NewMap(ast.Span{})
		for k, val := range vv {
			m.Set(k, fromGo(val))
		}
		return m
	default:
		return nullVal()
	}
}
