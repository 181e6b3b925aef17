package formula

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/internalerr"
)

// CheckLDict validates the structure of a nested-map wire form: the "op"
// and "args" keys must be present, the keys required by the op tag must
// exist in args, and nested formulas must validate recursively. It is the
// sole format gate; DNF shape and quantifier usage are not checked here.
// Unrecognized op tags pass validation and are rejected later by Parse.
func CheckLDict(ldict map[string]any) error {
	op, args, err := opArgs(ldict)
	if err != nil {
		return err
	}

	switch op {
	case OpTerm:
		return requireKeys(op, args, "name", "state", "entity_id_list")
	case OpPred:
		if err := requireKeys(op, args, "name", "relation_id_list", "head", "tail"); err != nil {
			return err
		}
		for _, key := range []string{"head", "tail"} {
			nested, err := mapArg(args, key)
			if err != nil {
				return err
			}
			if err := CheckLDict(nested); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	case OpNeg:
		nested, err := mapArg(args, "formula")
		if err != nil {
			return err
		}
		return CheckLDict(nested)
	case OpConj, OpDisj:
		dicts, err := mapListArg(args, "formulas")
		if err != nil {
			return err
		}
		for i, d := range dicts {
			if err := CheckLDict(d); err != nil {
				return fmt.Errorf("formulas[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// DecodeJSON reads one JSON-encoded ldict and parses it into a formula.
func DecodeJSON(r io.Reader) (Formula, error) {
	var ldict map[string]any
	if err := json.NewDecoder(r).Decode(&ldict); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrMalformedLDict, err)
	}
	return Parse(ldict)
}

// EncodeJSON writes the JSON encoding of the formula's ldict form.
func EncodeJSON(w io.Writer, f Formula) error {
	return json.NewEncoder(w).Encode(f.ToLDict())
}

func opArgs(ldict map[string]any) (string, map[string]any, error) {
	rawOp, ok := ldict["op"]
	if !ok {
		return "", nil, fmt.Errorf("%w: missing \"op\"", internalerr.ErrMalformedLDict)
	}
	op, ok := rawOp.(string)
	if !ok {
		return "", nil, fmt.Errorf("%w: \"op\" is not a string", internalerr.ErrMalformedLDict)
	}
	rawArgs, ok := ldict["args"]
	if !ok {
		return "", nil, fmt.Errorf("%w: missing \"args\" for op %q", internalerr.ErrMalformedLDict, op)
	}
	args, ok := rawArgs.(map[string]any)
	if !ok {
		return "", nil, fmt.Errorf("%w: \"args\" of op %q is not a map", internalerr.ErrMalformedLDict, op)
	}
	return op, args, nil
}

func requireKeys(op string, args map[string]any, keys ...string) error {
	for _, key := range keys {
		if _, ok := args[key]; !ok {
			return fmt.Errorf("%w: op %q missing %q", internalerr.ErrMalformedLDict, op, key)
		}
	}
	return nil
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", internalerr.ErrMalformedLDict, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a string", internalerr.ErrMalformedLDict, key)
	}
	return s, nil
}

func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", internalerr.ErrMalformedLDict, key)
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", internalerr.ErrMalformedLDict, key, err)
	}
	return int(n), nil
}

func int64ListArg(args map[string]any, key string) ([]int64, error) {
	v, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", internalerr.ErrMalformedLDict, key)
	}
	switch list := v.(type) {
	case []int64:
		out := make([]int64, len(list))
		copy(out, list)
		return out, nil
	case []any:
		out := make([]int64, 0, len(list))
		for i, item := range list {
			n, err := toInt64(item)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", internalerr.ErrMalformedLDict, key, i, err)
			}
			out = append(out, n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q is not a list", internalerr.ErrMalformedLDict, key)
	}
}

func mapArg(args map[string]any, key string) (map[string]any, error) {
	v, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", internalerr.ErrMalformedLDict, key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a map", internalerr.ErrMalformedLDict, key)
	}
	return m, nil
}

func mapListArg(args map[string]any, key string) ([]map[string]any, error) {
	v, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", internalerr.ErrMalformedLDict, key)
	}
	switch list := v.(type) {
	case []map[string]any:
		return list, nil
	case []any:
		out := make([]map[string]any, 0, len(list))
		for i, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] is not a map", internalerr.ErrMalformedLDict, key, i)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q is not a list", internalerr.ErrMalformedLDict, key)
	}
}

// toInt64 accepts the numeric encodings that show up in decoded JSON and
// in programmatically built ldicts.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
