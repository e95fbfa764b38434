package taxonomy

import (
	"strings"
	"sync"
	"time"
)

// PathSeparator joins path segments for display.
const PathSeparator = " > "

// TreeNode is the transient nested payload shape returned by the catalog
// service. It exists only as flattener input and is never mixed with the
// flat CatalogNode representation; Flatten reads the Children of every node
// exactly once and discards the nested form.
type TreeNode struct {
	ID        int    `json:"id"`
	Header    string `json:"header"`
	SyncUID   string `json:"syncUid"`
	ParentID  *int   `json:"parentId"`
	Level     int    `json:"level"`
	LastLevel bool   `json:"lastLevel"`
	Pos       int    `json:"pos"`
	// Enabled defaults to true when the service omits it.
	Enabled *bool `json:"enabled"`
	Deleted bool  `json:"deleted"`

	ProductCount           int `json:"productCount"`
	ProductCountAdditional int `json:"productCountAdditional"`

	Lft int `json:"lft"`
	Rgt int `json:"rgt"`

	Children []TreeNode `json:"children"`
}

// CatalogNode is the flat, indexable representation of a catalog node.
//
// The id and the nested-set bounds are authoritative only for the snapshot
// they were flattened in; any remote mutation makes them stale.
type CatalogNode struct {
	ID        int    `json:"id"`
	Header    string `json:"header"`
	SyncUID   string `json:"sync_uid,omitempty"`
	ParentID  *int   `json:"parent_id"`
	Lft       int    `json:"lft"`
	Rgt       int    `json:"rgt"`
	Level     int    `json:"level"`
	LastLevel bool   `json:"last_level"`
	Pos       int    `json:"pos"`
	Enabled   bool   `json:"enabled"`
	Deleted   bool   `json:"deleted"`

	// ProductCount is the direct item count; ProductCountAdditional counts
	// items cross-listed into this node.
	ProductCount           int `json:"product_count"`
	ProductCountAdditional int `json:"product_count_additional"`

	// Path is the display path from the fetched root to this node,
	// PathArray the ordered headers it is joined from.
	Path      string   `json:"path"`
	PathArray []string `json:"path_array"`
	Depth     int      `json:"depth"`

	// HasChildren and ChildrenCount are computed at flatten time, not
	// trusted from the source payload.
	HasChildren   bool `json:"has_children"`
	ChildrenCount int  `json:"children_count"`
}

// HierarchyEntry records the parent and children of one node id.
type HierarchyEntry struct {
	Node        *CatalogNode `json:"-"`
	ParentID    *int         `json:"parent_id"`
	ChildrenIDs []int        `json:"children_ids"`
}

// HierarchyMap indexes parent/child relations by node id so traversal-heavy
// operations never re-scan the flat list.
type HierarchyMap map[int]*HierarchyEntry

// TreeStats aggregates counters over one flattened snapshot.
type TreeStats struct {
	TotalNodes     int         `json:"total_nodes"`
	EnabledNodes   int         `json:"enabled_nodes"`
	DeletedNodes   int         `json:"deleted_nodes"`
	LeafNodes      int         `json:"leaf_nodes"`
	NodesWithItems int         `json:"nodes_with_items"`
	MaxDepth       int         `json:"max_depth"`
	TotalItems     int         `json:"total_items"`
	LevelHistogram map[int]int `json:"levels_distribution"`
}

// Snapshot is one flattened view of the catalog tree. All derived indices
// are valid only for this snapshot.
type Snapshot struct {
	Nodes     []*CatalogNode
	Hierarchy HierarchyMap
	Stats     TreeStats
	FetchedAt time.Time

	byID map[int]*CatalogNode

	pathOnce  sync.Once
	pathIndex map[string]*CatalogNode
}

// NodeByID returns the node with the given id, or nil.
func (s *Snapshot) NodeByID(id int) *CatalogNode {
	return s.byID[id]
}

// PathIndex returns a normalized match-key -> node index, built lazily once
// per snapshot. Keys are the normalized PathArray segments joined with
// " / ", the separator breadcrumbs are matched with.
func (s *Snapshot) PathIndex() map[string]*CatalogNode {
	s.pathOnce.Do(func() {
		s.pathIndex = make(map[string]*CatalogNode, len(s.Nodes))
		for _, node := range s.Nodes {
			s.pathIndex[matchKey(node.PathArray)] = node
		}
	})
	return s.pathIndex
}

// matchKey normalizes path segments and joins them with the breadcrumb
// match separator.
func matchKey(segments []string) string {
	normalized := make([]string, 0, len(segments))
	for _, seg := range segments {
		normalized = append(normalized, normalizeSegment(seg))
	}
	return strings.Join(normalized, matchSeparator)
}
