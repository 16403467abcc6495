package patdl

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/code"
	"github.com/goliatone/go-s42/pkg/xmltree"
)

// ConditionKind enumerates the trigger conditions PATDL defines.
type ConditionKind int

const (
	DefaultCase ConditionKind = iota
	IsPopulated
	IsNotPopulated
	HasValue
	HasResult
)

var conditionTags = map[string]ConditionKind{
	"defaultCase":    DefaultCase,
	"isPopulated":    IsPopulated,
	"isNotPopulated": IsNotPopulated,
	"hasValue":       HasValue,
	"hasResult":      HasResult,
}

// String returns the XML tag of the condition.
func (k ConditionKind) String() string {
	switch k {
	case DefaultCase:
		return "defaultCase"
	case IsPopulated:
		return "isPopulated"
	case IsNotPopulated:
		return "isNotPopulated"
	case HasValue:
		return "hasValue"
	case HasResult:
		return "hasResult"
	default:
		return fmt.Sprintf("ConditionKind(%d)", int(k))
	}
}

// Codeset is a group of codes tested together by the populated conditions.
type Codeset []code.Code

// Comparison is one hasValue or hasResult argument. For hasValue Code holds
// the element; for hasResult Procedure names the procedure.
type Comparison struct {
	Code      code.Code
	Procedure string
	Literal   string
}

// Condition is one trigger condition of a group. All occurrences of the same
// tag inside a group collapse into one Condition; every occurrence must hold
// for the condition to hold.
type Condition struct {
	Kind ConditionKind

	// Codesets holds, per occurrence, the codesets of an isPopulated or
	// isNotPopulated condition.
	Codesets [][]Codeset

	// Comparisons holds, per occurrence, the argument of a hasValue or
	// hasResult condition.
	Comparisons []Comparison
}

// ProcedureInvoker runs named procedures; *Template implements it.
type ProcedureInvoker interface {
	InvokeProcedure(name string, data *address.Data) (string, error)
}

// Satisfied evaluates the condition against data. Only hasResult can fail,
// when its procedure is not registered.
func (c Condition) Satisfied(data *address.Data, procs ProcedureInvoker) (bool, error) {
	switch c.Kind {
	case DefaultCase:
		return true, nil

	case IsPopulated:
		// Satisfied when, for every occurrence, at least one codeset has all
		// of its elements populated.
		for _, codesets := range c.Codesets {
			if !anyCodeset(codesets, func(cs Codeset) bool { return allPopulated(data, cs) }) {
				return false, nil
			}
		}
		return true, nil

	case IsNotPopulated:
		// Satisfied when, for every occurrence, at least one codeset has none
		// of its elements populated.
		for _, codesets := range c.Codesets {
			if !anyCodeset(codesets, func(cs Codeset) bool { return nonePopulated(data, cs) }) {
				return false, nil
			}
		}
		return true, nil

	case HasValue:
		for _, cmp := range c.Comparisons {
			value, ok := data.Get(cmp.Code)
			if !ok || value != cmp.Literal {
				return false, nil
			}
		}
		return true, nil

	case HasResult:
		if procs == nil {
			return false, fmt.Errorf("%w: no procedure registry", ErrUnknownProcedure)
		}
		for _, cmp := range c.Comparisons {
			result, err := procs.InvokeProcedure(cmp.Procedure, data)
			if err != nil {
				return false, err
			}
			if result != cmp.Literal {
				return false, nil
			}
		}
		return true, nil

	default:
		return false, fmt.Errorf("patdl: unhandled condition kind %s", c.Kind)
	}
}

func anyCodeset(codesets []Codeset, fn func(Codeset) bool) bool {
	for _, cs := range codesets {
		if fn(cs) {
			return true
		}
	}
	return false
}

func allPopulated(data *address.Data, cs Codeset) bool {
	for _, c := range cs {
		if !data.IsPopulated(c) {
			return false
		}
	}
	return true
}

func nonePopulated(data *address.Data, cs Codeset) bool {
	for _, c := range cs {
		if data.IsPopulated(c) {
			return false
		}
	}
	return true
}

// parseCondition builds one Condition from every occurrence of a tag within a
// trigger group.
func parseCondition(kind ConditionKind, elements []*xmltree.Element, ctrl ControlChars) (Condition, error) {
	cond := Condition{Kind: kind}
	for _, el := range elements {
		switch kind {
		case DefaultCase:
			// No arguments.
		case IsPopulated, IsNotPopulated:
			codesets, err := parseCodesets(el.Text, ctrl)
			if err != nil {
				return Condition{}, fmt.Errorf("%s: %w", kind, err)
			}
			cond.Codesets = append(cond.Codesets, codesets)
		case HasValue:
			subject, literal, err := parsePair(el.Text, ctrl.Separator)
			if err != nil {
				return Condition{}, fmt.Errorf("%s: %w", kind, err)
			}
			c, err := code.Parse(subject)
			if err != nil {
				return Condition{}, fmt.Errorf("%w: %s: %w", ErrTemplateMalformed, kind, err)
			}
			cond.Comparisons = append(cond.Comparisons, Comparison{Code: c, Literal: literal})
		case HasResult:
			subject, literal, err := parsePair(el.Text, ctrl.Separator)
			if err != nil {
				return Condition{}, fmt.Errorf("%s: %w", kind, err)
			}
			cond.Comparisons = append(cond.Comparisons, Comparison{Procedure: subject, Literal: literal})
		default:
			return Condition{}, malformed("unhandled condition kind %s", kind)
		}
	}
	return cond, nil
}

// parseCodesets splits on the sequencer into codesets and each codeset on the
// separator into codes.
func parseCodesets(text string, ctrl ControlChars) ([]Codeset, error) {
	var out []Codeset
	for _, rawSet := range splitControl(strings.TrimSpace(text), ctrl.Sequencer) {
		var cs Codeset
		for _, raw := range splitControl(strings.TrimSpace(rawSet), ctrl.Separator) {
			c, err := code.Parse(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrTemplateMalformed, err)
			}
			cs = append(cs, c)
		}
		out = append(out, cs)
	}
	return out, nil
}

// parsePair splits "subject<sep>literal" once and strips whitespace and
// surrounding double quotes from both halves.
func parsePair(text, sep string) (string, string, error) {
	parts := strings.SplitN(text, sep, 2)
	if sep == "" || len(parts) != 2 {
		return "", "", malformed("expected two arguments separated by %q in %q", sep, text)
	}
	return unquote(parts[0]), unquote(parts[1]), nil
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

func splitControl(s, sep string) []string {
	if sep == "" {
		return []string{s}
	}
	return strings.Split(s, sep)
}
