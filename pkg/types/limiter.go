package types

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// limiterTokenCount is the exact arity of a limiter definition:
// type, default, variants, pattern.
const limiterTokenCount = 4

// Limiter errors.
var (
	ErrInvalidLimiter      = errors.New("invalid limiter definition")
	ErrConstraintViolation = errors.New("value fails column constraint")
)

// ValueLimiter restricts the values a column accepts: a declared type plus
// an optional default, an optional closed set of variants, and an optional
// regular-expression pattern. A non-empty variant set takes precedence over
// the pattern; the pattern is only consulted when no variants are declared.
type ValueLimiter struct {
	Type     ValueType
	Default  *Value         // nil means no explicit default
	Variants []Value        // empty means any value of the type
	Pattern  *regexp.Regexp // nil means no pattern constraint
}

// NewValueLimiter returns an unrestricted limiter of the given type.
func NewValueLimiter(vt ValueType) ValueLimiter {
	return ValueLimiter{Type: vt}
}

// LimiterFromTokens builds a limiter from the four raw definition tokens
// [type, default, variants, pattern]. Empty tokens leave the field unset.
// The variants token is a comma- or whitespace-delimited list of literals;
// each literal and the default must parse against the declared type, and
// the default must satisfy the finished limiter itself. Returns
// ErrInvalidLimiter on wrong arity, unparseable literals, a malformed
// pattern, or a self-disqualifying default.
func LimiterFromTokens(tokens []string) (*ValueLimiter, error) {
	if len(tokens) != limiterTokenCount {
		return nil, fmt.Errorf("%w: want %d fields [type default variants pattern], got %d",
			ErrInvalidLimiter, limiterTokenCount, len(tokens))
	}
	lim := NewValueLimiter(ParseValueType(tokens[0]))

	if raw := strings.TrimSpace(tokens[2]); raw != "" {
		for _, literal := range splitVariants(raw) {
			v, err := ParseValue(literal, lim.Type)
			if err != nil {
				return nil, fmt.Errorf("%w: variant %q: %v", ErrInvalidLimiter, literal, err)
			}
			lim.Variants = append(lim.Variants, v)
		}
	}
	if raw := strings.TrimSpace(tokens[3]); raw != "" {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidLimiter, raw, err)
		}
		lim.Pattern = re
	}
	if raw := tokens[1]; raw != "" {
		v, err := ParseValue(raw, lim.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: default %q: %v", ErrInvalidLimiter, raw, err)
		}
		if !lim.Qualify(v) {
			return nil, fmt.Errorf("%w: default %q fails its own constraint", ErrInvalidLimiter, raw)
		}
		lim.Default = &v
	}
	return &lim, nil
}

// splitVariants splits a variants token on commas and whitespace, dropping
// empty pieces.
func splitVariants(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// Qualify reports whether v satisfies the limiter. The declared type is
// checked first; a mismatched type never reaches the variant or pattern
// checks. With variants declared, v must equal one of them. Otherwise, with
// a pattern declared, v's textual form must match it. An unrestricted
// limiter accepts every value of its type.
func (l ValueLimiter) Qualify(v Value) bool {
	if v.Type != l.Type {
		return false
	}
	if len(l.Variants) > 0 {
		for _, variant := range l.Variants {
			if v == variant {
				return true
			}
		}
		return false
	}
	if l.Pattern != nil {
		return l.Pattern.MatchString(v.String())
	}
	return true
}

// Tokens returns the four-field textual form [type default variants
// pattern], the inverse of LimiterFromTokens. Variants are joined with a
// single space.
func (l ValueLimiter) Tokens() []string {
	tokens := []string{string(l.Type), "", "", ""}
	if l.Default != nil {
		tokens[1] = l.Default.String()
	}
	if len(l.Variants) > 0 {
		literals := make([]string, len(l.Variants))
		for i, v := range l.Variants {
			literals[i] = v.String()
		}
		tokens[2] = strings.Join(literals, " ")
	}
	if l.Pattern != nil {
		tokens[3] = l.Pattern.String()
	}
	return tokens
}

// clone returns a deep copy. The compiled pattern is immutable and shared.
func (l ValueLimiter) clone() ValueLimiter {
	out := ValueLimiter{Type: l.Type, Pattern: l.Pattern}
	if l.Default != nil {
		d := *l.Default
		out.Default = &d
	}
	if len(l.Variants) > 0 {
		out.Variants = append([]Value(nil), l.Variants...)
	}
	return out
}
