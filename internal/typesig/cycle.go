package typesig

import (
	"fmt"
	"strings"

	"github.com/yourorg/packetdoc/pkg/types"
)

// CycleError reports a type that reaches itself through the members
// Render would visit.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic type graph: %s", strings.Join(e.Path, " -> "))
}

// Check walks t the way Render does and returns a *CycleError if the
// walk would revisit a type already on the current path.
func Check(t *types.Type) error {
	return check(t, nil, map[*types.Type]bool{})
}

func check(t *types.Type, path []*types.Type, onPath map[*types.Type]bool) error {
	if t == nil {
		return nil
	}
	if onPath[t] {
		return &CycleError{Path: names(append(path, t))}
	}

	var next []*types.Type
	switch t.Kind {
	case types.KindGeneric:
		next = t.Args
	case types.KindClass:
		if t.Name == vector3Name {
			return nil
		}
		for _, f := range t.Fields {
			next = append(next, f.Type)
		}
	default:
		return nil
	}

	onPath[t] = true
	defer delete(onPath, t)
	path = append(path, t)
	for _, n := range next {
		if err := check(n, path, onPath); err != nil {
			return err
		}
	}
	return nil
}

func names(path []*types.Type) []string {
	out := make([]string, len(path))
	for i, t := range path {
		out[i] = t.FullName()
	}
	return out
}
