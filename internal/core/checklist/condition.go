package checklist

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Condition is a compiled signature or visibility condition.
type Condition interface {
	// Satisfied evaluates the condition against the latest responses.
	Satisfied(responses map[string]string) bool
	String() string
}

// NotEmptyCondition is "key!=empty": a non-blank response exists for Key.
type NotEmptyCondition struct {
	Key string
}

func (c NotEmptyCondition) Satisfied(responses map[string]string) bool {
	v, ok := responses[c.Key]
	return ok && strings.TrimSpace(v) != ""
}

func (c NotEmptyCondition) String() string { return c.Key + "!=empty" }

// EqualsCondition is "key=value": exact, case-sensitive match.
type EqualsCondition struct {
	Key   string
	Value string
}

func (c EqualsCondition) Satisfied(responses map[string]string) bool {
	v, ok := responses[c.Key]
	return ok && v == c.Value
}

func (c EqualsCondition) String() string { return c.Key + "=" + c.Value }

// InertCondition wraps text that matched neither form. It is never satisfied.
type InertCondition struct {
	Raw string
}

func (c InertCondition) Satisfied(map[string]string) bool { return false }

func (c InertCondition) String() string { return c.Raw }

var conditionLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Key", Pattern: `\s*[^=!\s][^=!]*`},
		{Name: "NotEq", Pattern: `!=`, Action: lexer.Push("NotEqual")},
		{Name: "Eq", Pattern: `=`, Action: lexer.Push("Equal")},
	},
	"NotEqual": {
		{Name: "Empty", Pattern: `empty\s*`},
	},
	"Equal": {
		{Name: "Text", Pattern: `.+`},
	},
})

type conditionAST struct {
	Key      string `@Key`
	NotEmpty bool   `( NotEq @Empty`
	Equals   bool   `| @Eq`
	Value    string `  @Text? )`
}

var conditionParser = participle.MustBuild[conditionAST](
	participle.Lexer(conditionLexer),
)

// KeyReferenceable reports whether a condition can name key: keys may hold
// any text except "=" and "!", and no surrounding whitespace.
func KeyReferenceable(key string) bool {
	return key != "" && key == strings.TrimSpace(key) && !strings.ContainsAny(key, "=!")
}

// ParseCondition compiles a condition string. Text that is neither
// "key!=empty" nor "key=value" yields an InertCondition and the parse error.
// The key is trimmed; the value is compared verbatim and may be empty.
func ParseCondition(raw string) (Condition, error) {
	ast, err := conditionParser.ParseString("", raw)
	if err != nil {
		return InertCondition{Raw: raw}, err
	}
	key := strings.TrimSpace(ast.Key)
	switch {
	case ast.NotEmpty:
		return NotEmptyCondition{Key: key}, nil
	case ast.Equals:
		return EqualsCondition{Key: key, Value: ast.Value}, nil
	}
	return InertCondition{Raw: raw}, nil
}

// CompileConditions parses each condition, keeping inert ones in place.
func CompileConditions(raws []string) []Condition {
	conds := make([]Condition, len(raws))
	for i, raw := range raws {
		conds[i], _ = ParseCondition(raw)
	}
	return conds
}

// AnySatisfied applies OR semantics. An empty list is never satisfied.
func AnySatisfied(conds []Condition, responses map[string]string) bool {
	for _, c := range conds {
		if c.Satisfied(responses) {
			return true
		}
	}
	return false
}

// IsSignatureRequired reports whether def currently requires a signature.
// Non-conditional definitions return Required verbatim.
func IsSignatureRequired(def RequiredSignature, responses map[string]string) bool {
	if !def.Conditional {
		return def.Required
	}
	return AnySatisfied(CompileConditions(def.Conditions), responses)
}

// IsItemVisible evaluates an item's VisibleWhen condition. Items without one
// are always visible.
func IsItemVisible(item Item, responses map[string]string) bool {
	if strings.TrimSpace(item.VisibleWhen) == "" {
		return true
	}
	cond, _ := ParseCondition(item.VisibleWhen)
	return cond.Satisfied(responses)
}
