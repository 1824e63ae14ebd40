// Package paths parses, normalizes and composes POSIX-style path strings.
// It has no knowledge of the node tree.
package paths

import (
	"path"
	"strings"

	"github.com/brettbedarf/treefs"
)

// Sep is the path separator
const Sep = "/"

// Normalize collapses repeated separators and resolves "." and "name/.."
// elements. A leading "/" is kept, as is a single trailing "/" when the
// input had one. Leading ".." elements of relative paths are kept; the
// root check happens in [Components]. The empty path normalizes to ".".
func Normalize(p string) string {
	cleaned := path.Clean(p)
	if strings.HasSuffix(p, Sep) && !strings.HasSuffix(cleaned, Sep) {
		cleaned += Sep
	}
	return cleaned
}

// Join drops empty parts, joins the rest with [Sep] and normalizes the
// result. Join() and Join("") both return ".".
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	if len(kept) == 0 {
		return "."
	}
	return Normalize(strings.Join(kept, Sep))
}

// Basename returns the last element of p, ignoring trailing separators.
// If a suffix is given and the element ends with it (without being equal
// to it), the suffix is removed.
//
//	Basename("bar/")           // "bar"
//	Basename("/")              // ""
//	Basename("bar.js", ".js")  // "bar"
func Basename(p string, suffix ...string) string {
	end := len(p)
	for end > 0 && p[end-1] == '/' {
		end--
	}
	if end == 0 {
		return ""
	}
	base := p[strings.LastIndex(p[:end], Sep)+1 : end]

	if len(suffix) > 0 && suffix[0] != "" && base != suffix[0] {
		base = strings.TrimSuffix(base, suffix[0])
	}
	return base
}

// Dirname returns p without its last element and the separator before
// it. An empty result is "/" for absolute paths and "." otherwise.
func Dirname(p string) string {
	if p == "" {
		return "."
	}
	hasRoot := p[0] == '/'

	end := -1
	matchedSlash := true
	for i := len(p) - 1; i >= 1; i-- {
		if p[i] == '/' {
			if !matchedSlash {
				end = i
				break
			}
		} else {
			matchedSlash = false
		}
	}

	if end == -1 {
		if hasRoot {
			return Sep
		}
		return "."
	}
	if hasRoot && end == 1 {
		return "//"
	}
	return p[:end]
}

// Extname returns the substring of p starting at its last ".".
//
// NOTE: when p contains no "." the whole of p is returned, not "".
func Extname(p string) string {
	if i := strings.LastIndex(p, "."); i != -1 {
		return p[i:]
	}
	return p
}

// Components normalizes p and splits it into root-relative components.
// "", "." and "/" all yield zero components. A path that normalizes to
// ascend above the root fails with [treefs.ErrOutOfRoot].
func Components(p string) ([]string, error) {
	normalized := Normalize(p)

	components := make([]string, 0, strings.Count(normalized, Sep)+1)
	for _, segment := range strings.Split(normalized, Sep) {
		switch segment {
		case "", ".":
			continue
		case "..":
			// Normalize only leaves ".." at the front of relative paths
			return nil, treefs.NewPathError(treefs.OpResolve, normalized, treefs.ErrOutOfRoot)
		default:
			components = append(components, segment)
		}
	}
	return components, nil
}

// ValidComponent reports whether name can be used as a single child name:
// non-empty, not "." or "..", and free of separators.
func ValidComponent(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.Contains(name, Sep)
}
