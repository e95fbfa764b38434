package taxonomy

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Flatten decodes a raw catalog payload and converts the nested tree into a
// flat snapshot: the ordered node list, the hierarchy map and aggregate
// statistics.
//
// The payload may be a single tree object or a list of root objects; any
// other shape yields a MalformedTaxonomyError and no partial state.
func Flatten(raw json.RawMessage) (*Snapshot, error) {
	roots, err := parseTree(raw)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		FetchedAt: time.Now().UTC(),
	}
	for i := range roots {
		flattenNode(&roots[i], nil, snap)
	}

	snap.byID = make(map[int]*CatalogNode, len(snap.Nodes))
	for _, node := range snap.Nodes {
		snap.byID[node.ID] = node
	}

	snap.Hierarchy = buildHierarchyMap(snap.Nodes)
	snap.Stats = calculateStats(snap.Nodes)
	return snap, nil
}

// parseTree validates the payload shape. The service returns a list of
// roots for the whole catalog and a single object for a subtree fetch.
func parseTree(raw json.RawMessage) ([]TreeNode, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &MalformedTaxonomyError{Reason: "empty payload"}
	}

	switch trimmed[0] {
	case '[':
		var roots []TreeNode
		if err := json.Unmarshal(trimmed, &roots); err != nil {
			return nil, &MalformedTaxonomyError{Reason: "payload is not a node list", Err: err}
		}
		return roots, nil
	case '{':
		var root TreeNode
		if err := json.Unmarshal(trimmed, &root); err != nil {
			return nil, &MalformedTaxonomyError{Reason: "payload is not a node object", Err: err}
		}
		return []TreeNode{root}, nil
	default:
		return nil, &MalformedTaxonomyError{Reason: "payload is neither list nor object"}
	}
}

// flattenNode appends the flat record for one nested node, then recurses
// into its children. The children slice is read exactly here; the flat
// record never carries it, so the nested and flat representations are not
// retained together.
func flattenNode(node *TreeNode, parentPath []string, snap *Snapshot) {
	currentPath := make([]string, 0, len(parentPath)+1)
	currentPath = append(currentPath, parentPath...)
	currentPath = append(currentPath, node.Header)

	enabled := true
	if node.Enabled != nil {
		enabled = *node.Enabled
	}

	snap.Nodes = append(snap.Nodes, &CatalogNode{
		ID:                     node.ID,
		Header:                 node.Header,
		SyncUID:                node.SyncUID,
		ParentID:               node.ParentID,
		Lft:                    node.Lft,
		Rgt:                    node.Rgt,
		Level:                  node.Level,
		LastLevel:              node.LastLevel,
		Pos:                    node.Pos,
		Enabled:                enabled,
		Deleted:                node.Deleted,
		ProductCount:           node.ProductCount,
		ProductCountAdditional: node.ProductCountAdditional,
		Path:                   strings.Join(currentPath, PathSeparator),
		PathArray:              currentPath,
		Depth:                  len(currentPath),
		HasChildren:            len(node.Children) > 0,
		ChildrenCount:          len(node.Children),
	})

	for i := range node.Children {
		flattenNode(&node.Children[i], currentPath, snap)
	}
}

// buildHierarchyMap runs a second pass over the flat list, registering every
// node under its own id and appending it to its parent's children. A
// placeholder entry is created when a child is visited before its parent;
// a node whose parent id equals its own id is treated as a root.
func buildHierarchyMap(nodes []*CatalogNode) HierarchyMap {
	hm := make(HierarchyMap, len(nodes))

	for _, node := range nodes {
		entry, ok := hm[node.ID]
		if !ok {
			entry = &HierarchyEntry{}
			hm[node.ID] = entry
		}
		entry.Node = node
		entry.ParentID = node.ParentID

		if node.ParentID == nil || *node.ParentID == node.ID {
			continue
		}

		parent, ok := hm[*node.ParentID]
		if !ok {
			parent = &HierarchyEntry{}
			hm[*node.ParentID] = parent
		}
		parent.ChildrenIDs = append(parent.ChildrenIDs, node.ID)
	}

	return hm
}

func calculateStats(nodes []*CatalogNode) TreeStats {
	stats := TreeStats{
		TotalNodes:     len(nodes),
		LevelHistogram: make(map[int]int),
	}

	for _, node := range nodes {
		if node.Enabled {
			stats.EnabledNodes++
		}
		if node.Deleted {
			stats.DeletedNodes++
		}
		if node.LastLevel {
			stats.LeafNodes++
		}
		if node.ProductCount > 0 {
			stats.NodesWithItems++
		}
		if node.Depth > stats.MaxDepth {
			stats.MaxDepth = node.Depth
		}
		stats.TotalItems += node.ProductCount
		stats.LevelHistogram[node.Level]++
	}

	return stats
}
