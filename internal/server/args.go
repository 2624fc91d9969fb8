package server

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/aactmcp/pkg/core"
)

// stringArg returns args[name] as a string. A missing or null argument
// is returned as "" so the operation reports it as missing.
func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", core.Errorf(core.KindInvalidArgument, "%s must be a string", name)
	}
	return s, nil
}

// intArg returns args[name] as an int, or def when absent.
func intArg(args map[string]any, name string, def int) (int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return def, nil
	}

	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, core.Errorf(core.KindInvalidArgument, "%s must be an integer", name)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, core.Errorf(core.KindInvalidArgument, "%s must be an integer", name)
		}
		return n, nil
	default:
		return 0, core.Errorf(core.KindInvalidArgument, "%s must be an integer", name)
	}

	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, core.Errorf(core.KindInvalidArgument, "%s must be an integer", name)
	}
	return int(f), nil
}
