package taxonomy

import "strings"

// matchSeparator joins normalized path segments into match keys. The
// display separator (PathSeparator) is never used for matching.
const matchSeparator = " / "

// MatchStep identifies the resolution strategy that produced a match.
// The values follow the documented resolution order.
type MatchStep int

const (
	// MatchExactPath is a full normalized breadcrumb equal to a stored path.
	MatchExactPath MatchStep = 1
	// MatchSegment is a single segment uniquely matching a node name,
	// tested from the most specific (trailing) segment first.
	MatchSegment MatchStep = 2
	// MatchFuzzy is a configured variant of the most specific segment
	// (suffix stripping, space removal) uniquely matching a node name.
	MatchFuzzy MatchStep = 3
	// MatchSubstring is a containment match against node names and paths,
	// in flat-list insertion order. Near-equal candidates are deliberately
	// not ranked further.
	MatchSubstring MatchStep = 4
	// MatchNotFound means no strategy matched; the caller decides between
	// the root fallback and category creation.
	MatchNotFound MatchStep = 5
)

// Resolution is the outcome of resolving one breadcrumb.
type Resolution struct {
	Node *CatalogNode
	Step MatchStep
}

// Found reports whether a node was resolved.
func (r Resolution) Found() bool { return r.Node != nil }

// ResolverConfig tunes the fuzzy matching rules. The suffix-stripping rules
// are language-specific heuristics from the source taxonomy's vocabulary
// and are configurable rather than hard-coded.
type ResolverConfig struct {
	// SuffixRules lists segment suffixes stripped to form fuzzy variants
	// (simple singular/plural folding).
	SuffixRules []string
	// StripSpaces adds a variant with all spaces removed.
	StripSpaces bool
}

// DefaultResolverConfig returns the rules tuned for the source taxonomy.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		SuffixRules: []string{"ы", "и"},
		StripSpaces: true,
	}
}

// nameBucket tracks how many nodes share one normalized name. Only an
// unambiguous name can produce a segment match.
type nameBucket struct {
	node  *CatalogNode
	count int
}

// Resolver matches breadcrumb strings against one flattened snapshot. It is
// pure and safe for concurrent use once built.
type Resolver struct {
	cfg ResolverConfig

	byPath map[string]*CatalogNode
	byName map[string]*nameBucket

	// insertion-order views for the substring scan
	nodes []*CatalogNode
	names []string
	paths []string
}

// NewResolver builds the match indices for the given snapshot.
func NewResolver(snap *Snapshot, cfg ResolverConfig) *Resolver {
	r := &Resolver{
		cfg:    cfg,
		byPath: snap.PathIndex(),
		byName: make(map[string]*nameBucket, len(snap.Nodes)),
		nodes:  snap.Nodes,
		names:  make([]string, len(snap.Nodes)),
		paths:  make([]string, len(snap.Nodes)),
	}

	for i, node := range snap.Nodes {
		name := normalizeSegment(node.Header)
		r.names[i] = name
		r.paths[i] = matchKey(node.PathArray)

		if bucket, ok := r.byName[name]; ok {
			bucket.count++
		} else {
			r.byName[name] = &nameBucket{node: node, count: 1}
		}
	}

	return r
}

// ResolveValue resolves a raw breadcrumb value of unknown type. A nil value
// resolves to not-found; any non-string value is an InvalidBreadcrumbError.
func (r *Resolver) ResolveValue(value any) (Resolution, error) {
	if value == nil {
		return Resolution{Step: MatchNotFound}, nil
	}
	breadcrumb, ok := value.(string)
	if !ok {
		return Resolution{}, &InvalidBreadcrumbError{Value: value}
	}
	return r.Resolve(breadcrumb), nil
}

// Resolve matches a breadcrumb string against the snapshot. Unmatched input
// never fails; it resolves to MatchNotFound.
func (r *Resolver) Resolve(breadcrumb string) Resolution {
	segments := splitBreadcrumb(breadcrumb)
	if len(segments) == 0 {
		return Resolution{Step: MatchNotFound}
	}

	// 1. Exact full-path match
	if node, ok := r.byPath[strings.Join(segments, matchSeparator)]; ok {
		return Resolution{Node: node, Step: MatchExactPath}
	}

	// 2. Segment match, trailing-first: a deeper label beats a generic
	// ancestor label.
	for i := len(segments) - 1; i >= 0; i-- {
		if node := r.uniqueName(segments[i]); node != nil {
			return Resolution{Node: node, Step: MatchSegment}
		}
	}

	// 3. Fuzzy variants of the most specific segment
	last := segments[len(segments)-1]
	for _, variant := range r.variants(last) {
		if node := r.uniqueName(variant); node != nil {
			return Resolution{Node: node, Step: MatchFuzzy}
		}
	}

	// 4. Substring containment over names, then paths, in insertion order
	for i, name := range r.names {
		if strings.Contains(name, last) || strings.Contains(last, name) {
			return Resolution{Node: r.nodes[i], Step: MatchSubstring}
		}
	}
	for i, path := range r.paths {
		if strings.Contains(path, last) {
			return Resolution{Node: r.nodes[i], Step: MatchSubstring}
		}
	}

	return Resolution{Step: MatchNotFound}
}

// uniqueName returns the node for a normalized name only when exactly one
// node carries it.
func (r *Resolver) uniqueName(name string) *CatalogNode {
	if bucket, ok := r.byName[name]; ok && bucket.count == 1 {
		return bucket.node
	}
	return nil
}

// variants produces the configured fuzzy variants of one segment, skipping
// rules that do not change it.
func (r *Resolver) variants(segment string) []string {
	var out []string
	for _, suffix := range r.cfg.SuffixRules {
		if trimmed := strings.TrimSuffix(segment, suffix); trimmed != segment && trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if r.cfg.StripSpaces {
		if collapsed := strings.ReplaceAll(segment, " ", ""); collapsed != segment && collapsed != "" {
			out = append(out, collapsed)
		}
	}
	return out
}

// splitBreadcrumb splits a raw breadcrumb on "/" and normalizes every
// segment, dropping segments that normalize to empty.
func splitBreadcrumb(breadcrumb string) []string {
	parts := strings.Split(breadcrumb, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if normalized := normalizeSegment(part); normalized != "" {
			segments = append(segments, normalized)
		}
	}
	return segments
}

// normalizeSegment trims, collapses internal whitespace runs to one space
// and lowercases one segment. The same normalization is applied to stored
// names and paths.
func normalizeSegment(segment string) string {
	return strings.ToLower(strings.Join(strings.Fields(segment), " "))
}
