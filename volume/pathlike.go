package volume

import (
	"reflect"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/internal/tree"
	"github.com/brettbedarf/treefs/paths"
)

// PathLike is a path string or an already split component sequence
type PathLike interface {
	~string | ~[]string
}

// GetPathComponents returns the root-relative components p addresses.
// Strings are normalized; component slices are validated and copied.
func GetPathComponents[P PathLike](p P) ([]string, error) {
	return components(treefs.OpResolve, p)
}

func components[P PathLike](op string, p P) ([]string, error) {
	switch v := any(p).(type) {
	case string:
		return paths.Components(v)
	case []string:
		return checkComponents(op, v)
	}

	// named string and slice types
	rv := reflect.ValueOf(p)
	if rv.Kind() == reflect.String {
		return paths.Components(rv.String())
	}
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = rv.Index(i).String()
	}
	return checkComponents(op, parts)
}

func checkComponents(op string, parts []string) ([]string, error) {
	for _, part := range parts {
		if !paths.ValidComponent(part) {
			return nil, treefs.NewPathError(op, tree.Join(parts), treefs.ErrInvalidPath)
		}
	}
	out := make([]string, len(parts))
	copy(out, parts)
	return out, nil
}
