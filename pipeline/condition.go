package pipeline

import (
	"fmt"
	"strings"
)

// Condition is a parsed predicate over run parameters. The grammar covers
// what workflow-style definitions need:
//
//	param                 truthy check
//	!param                negated truthy check
//	param == "value"      equality
//	param != "value"      inequality
//
// Evaluation is pure and happens once per stage per run.
type Condition struct {
	raw    string
	negate bool
	param  string
	op     string
	value  string
}

// ParseCondition parses a condition expression. An empty expression returns
// nil (no condition, stage always eligible).
func ParseCondition(expr string) (*Condition, error) {
	raw := strings.TrimSpace(expr)
	if raw == "" {
		return nil, nil
	}

	c := &Condition{raw: raw}
	s := raw

	if strings.HasPrefix(s, "!") {
		c.negate = true
		s = strings.TrimSpace(s[1:])
	}

	for _, op := range []string{"==", "!="} {
		if idx := strings.Index(s, op); idx >= 0 {
			if c.negate {
				return nil, fmt.Errorf("pipeline: condition %q: cannot combine ! with %s", raw, op)
			}
			c.op = op
			c.param = strings.TrimSpace(s[:idx])
			c.value = unquote(strings.TrimSpace(s[idx+len(op):]))
			if c.param == "" {
				return nil, fmt.Errorf("pipeline: condition %q: missing parameter name", raw)
			}
			return c, nil
		}
	}

	if strings.ContainsAny(s, " \t") {
		return nil, fmt.Errorf("pipeline: condition %q: unrecognized expression", raw)
	}
	c.param = s
	if c.param == "" {
		return nil, fmt.Errorf("pipeline: condition %q: missing parameter name", raw)
	}
	return c, nil
}

// Eval evaluates the condition against bound run parameters.
func (c *Condition) Eval(params map[string]string) bool {
	v := params[c.param]
	switch c.op {
	case "==":
		return v == c.value
	case "!=":
		return v != c.value
	default:
		truthy := IsTruthy(v)
		if c.negate {
			return !truthy
		}
		return truthy
	}
}

// String returns the original expression.
func (c *Condition) String() string { return c.raw }

// IsTruthy reports whether a parameter value counts as true.
func IsTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
