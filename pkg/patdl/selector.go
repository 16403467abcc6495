package patdl

import (
	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/xmltree"
)

// Trigger couples a set of conditions, all of which must hold, with the lines
// selected when they do.
type Trigger struct {
	Conditions []Condition
	Lines      []LineIdentifier
}

// Satisfied reports whether every condition of the group holds.
func (t Trigger) Satisfied(data *address.Data, procs ProcedureInvoker) (bool, error) {
	for _, cond := range t.Conditions {
		ok, err := cond.Satisfied(data, procs)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// LineSelector is one lineSelect block: trigger groups in document order.
type LineSelector struct {
	Triggers []Trigger

	mode  SelectionMode
	procs ProcedureInvoker
}

// Lines returns the line identifiers selected for data. In SelectAllGroups
// mode every group is evaluated and the lines of all satisfied groups are
// appended in document order; in SelectFirstGroup mode evaluation stops after
// the first satisfied group.
func (s *LineSelector) Lines(data *address.Data) ([]LineIdentifier, error) {
	var lines []LineIdentifier
	for _, trigger := range s.Triggers {
		ok, err := trigger.Satisfied(data, s.procs)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		lines = append(lines, trigger.Lines...)
		if s.mode == SelectFirstGroup {
			break
		}
	}
	return lines, nil
}

// Mode returns the selection mode the selector was built with.
func (s *LineSelector) Mode() SelectionMode {
	return s.mode
}

// parseSelector segments the children of a lineSelect element into trigger
// groups. Conditions are followed by the lines they select; a condition that
// directly follows a lineName starts the next group.
func parseSelector(el *xmltree.Element, ctrl ControlChars, mode SelectionMode, procs ProcedureInvoker) (*LineSelector, error) {
	type rawGroup struct {
		conditions []*xmltree.Element
		lines      []*xmltree.Element
	}

	var groups []*rawGroup
	preceding := ""
	for _, child := range el.Children {
		_, isCondition := conditionTags[child.Tag]
		if !isCondition && child.Tag != tagLineName {
			return nil, malformed("unexpected %s in lineSelect", child.Tag)
		}
		if len(groups) == 0 || (preceding == tagLineName && isCondition) {
			groups = append(groups, &rawGroup{})
		}
		current := groups[len(groups)-1]
		if isCondition {
			current.conditions = append(current.conditions, child)
		} else {
			current.lines = append(current.lines, child)
		}
		preceding = child.Tag
	}

	selector := &LineSelector{mode: mode, procs: procs}
	for _, group := range groups {
		trigger, err := parseTrigger(group.conditions, group.lines, ctrl)
		if err != nil {
			return nil, err
		}
		selector.Triggers = append(selector.Triggers, trigger)
	}
	return selector, nil
}

// parseTrigger merges repeated condition tags into one Condition, keeping the
// order in which each tag first appears.
func parseTrigger(conditions, lines []*xmltree.Element, ctrl ControlChars) (Trigger, error) {
	var (
		order  []ConditionKind
		byKind = make(map[ConditionKind][]*xmltree.Element)
	)
	for _, el := range conditions {
		kind := conditionTags[el.Tag]
		if _, seen := byKind[kind]; !seen {
			order = append(order, kind)
		}
		byKind[kind] = append(byKind[kind], el)
	}

	var trigger Trigger
	for _, kind := range order {
		cond, err := parseCondition(kind, byKind[kind], ctrl)
		if err != nil {
			return Trigger{}, err
		}
		trigger.Conditions = append(trigger.Conditions, cond)
	}
	for _, el := range lines {
		id, err := parseLineIdentifier(el)
		if err != nil {
			return Trigger{}, err
		}
		trigger.Lines = append(trigger.Lines, id)
	}
	return trigger, nil
}
