// Package access holds the framework-free request authorization rules: path canonicalization,
// route classification and the access decision state machine.
package access

import "strings"

// marketplaceSegment is the namespace whose deeper segments are opaque, case-sensitive identifiers.
const marketplaceSegment = "marketplace"

// caseFoldedSegments is how many leading segments are lower-cased under the marketplace namespace.
const caseFoldedSegments = 2

// Normalize canonicalizes a request path:
//   - runs of slashes collapse to one and a leading slash is ensured
//   - "." segments are dropped and ".." pops the previous segment
//   - the trailing slash is removed (root stays "/")
//   - the path is lower-cased, except that under /marketplace only the first two
//     segments are lower-cased and the rest are kept verbatim
//
// Normalize is idempotent.
func Normalize(path string) string {
	raw := strings.Split(path, "/")
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		switch s {
		case "", ".":
			continue
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
			continue
		}
		segs = append(segs, s)
	}
	if len(segs) == 0 {
		return "/"
	}

	fold := len(segs)
	if strings.EqualFold(segs[0], marketplaceSegment) {
		fold = min(caseFoldedSegments, len(segs))
	}
	for i := range fold {
		segs[i] = strings.ToLower(segs[i])
	}
	return "/" + strings.Join(segs, "/")
}

// NeedsRedirect returns the canonical form of path and whether it differs from path.
// Callers must redirect instead of continuing when the second result is true.
func NeedsRedirect(path string) (string, bool) {
	canonical := Normalize(path)
	return canonical, canonical != path
}
