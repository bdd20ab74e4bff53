package lens

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rokoss21/facet-compiler/ast"
)

// builtinUtilLenses implements spec.md §6.1's miscellaneous group:
// default, json, json_parse, url_encode, url_decode, hash, template,
// to_string, to_number.
func builtinUtilLenses() []Lens {
	return []Lens{
		newLens("default", Pure, anyT, []ParamSig{param("value", anyT, true)}, anyT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, _ *Context) (ast.Value, error) {
			if !isNullish(in) {
				return in, nil
			}
			v, _ := namedArg(args, kwargs, "value", 0)
			return v, nil
		}),
		newLens("json", Pure, anyT, []ParamSig{param("indent", numberT, false)}, stringT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, _ *Context) (ast.Value, error) {
			indent := 0
			if v, ok := namedArg(args, kwargs, "indent", 0); ok {
				var err error
				indent, err = asInt(v)
				if err != nil {
					return nil, err
				}
			}
			var (
				raw []byte
				err error
			)
			if indent > 0 {
				raw, err = json.MarshalIndent(toGo(in), "", strings.Repeat(" ", indent))
			} else {
				raw, err = json.Marshal(toGo(in))
			}
			if err != nil {
				return nil, fmt.Errorf("json: %w", err)
			}
			return strVal(string(raw)), nil
		}),
		newLens("json_parse", Pure, stringT, nil, anyT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			var out interface{}
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				return nil, fmt.Errorf("json_parse: %w", err)
			}
			return fromGo(out), nil
		}),
		newLens("url_encode", Pure, stringT, nil, stringT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			return strVal(url.QueryEscape(s)), nil
		}),
		newLens("url_decode", Pure, stringT, nil, stringT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			out, err := url.QueryUnescape(s)
			if err != nil {
				return nil, fmt.Errorf("url_decode: %w", err)
			}
			return strVal(out), nil
		}),
		newLens("hash", Pure, stringT, []ParamSig{enumParam("algorithm", []string{"md5", "sha256", "sha512"}, false)}, stringT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			algo := "sha256"
			if v, ok := namedArg(args, kwargs, "algorithm", 0); ok {
				algo, err = asString(v)
				if err != nil {
					return nil, err
				}
			}
			var sum []byte
			switch algo {
			case "md5":
				h := md5.Sum([]byte(s))
				sum = h[:]
			case "sha256":
				h := sha256.Sum256([]byte(s))
				sum = h[:]
			case "sha512":
				h := sha512.Sum512([]byte(s))
				sum = h[:]
			default:
				return nil, fmt.Errorf("hash: unsupported algorithm %q", algo)
			}
			return strVal(hex.EncodeToString(sum)), nil
		}),
		newVariadicKwargsLens("template", Pure, stringT, stringT, func(in ast.Value, _ []ast.Value, kwargs map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			out := s
			for k, v := range kwargs {
				rep, err := asString(v)
				if err != nil {
					rep = fmt.Sprint(toGo(v))
				}
				out = strings.ReplaceAll(out, "{{"+k+"}}", rep)
			}
			return strVal(out), nil
		}),
		newLens("to_string", Pure, anyT, nil, stringT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			switch vv := in.(type) {
			case *ast.String:
				return vv, nil
			case *ast.Scalar:
				return strVal(scalarToString(vv)), nil
			default:
				raw, err := json.Marshal(toGo(in))
				if err != nil {
					return nil, err
				}
				return strVal(string(raw)), nil
			}
		}),
		newLens("to_number", Pure, stringT, nil, numberT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
				return &ast.Scalar{Kind: ast.ScalarInt, IntVal: i}, nil
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("to_number: %q is not numeric", s)
			}
			return floatVal(f), nil
		}),
	}
}

func isNullish(v ast.Value) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(*ast.Scalar); ok && s.Kind == ast.ScalarNull {
		return true
	}
	return false
}
