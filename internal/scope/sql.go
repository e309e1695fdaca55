package scope

import (
	"fmt"
	"strings"
)

// SQL renders the predicate as a WHERE fragment with numbered placeholders
// starting at argIndex. An unrestricted predicate renders as TRUE and a
// denying one as FALSE, so callers can always interpolate the fragment.
func (p Predicate) SQL(argIndex int) (string, []any) {
	if p.deny {
		return "FALSE", nil
	}
	if p.Unrestricted() {
		return "TRUE", nil
	}

	var (
		parts []string
		args  []any
	)
	next := func() int { return argIndex + len(args) }

	for _, c := range p.All {
		frag, arg, ok := clauseSQL(c, next())
		if !ok {
			return "FALSE", nil
		}
		parts = append(parts, frag)
		if arg != nil {
			args = append(args, arg)
		}
	}

	if len(p.Any) > 0 {
		var ors []string
		for _, c := range p.Any {
			frag, arg, ok := clauseSQL(c, next())
			if !ok {
				// An unsatisfiable alternative drops out of the OR group.
				ors = append(ors, "FALSE")
				continue
			}
			ors = append(ors, frag)
			if arg != nil {
				args = append(args, arg)
			}
		}
		parts = append(parts, "("+strings.Join(ors, " OR ")+")")
	}

	return strings.Join(parts, " AND "), args
}

func clauseSQL(c Clause, idx int) (string, any, bool) {
	switch c.Op {
	case OpEq, OpIs:
		return fmt.Sprintf("%s = $%d", c.Field, idx), c.Value, true
	case OpIn:
		ids, _ := c.Value.([]int64)
		if len(ids) == 0 {
			return "", nil, false
		}
		return fmt.Sprintf("%s = ANY($%d)", c.Field, idx), ids, true
	case OpContains:
		return fmt.Sprintf("$%d = ANY(%s)", idx, c.Field), c.Value, true
	}
	return "", nil, false
}
