package checks

import (
	"fmt"
	"sort"

	"catalog-sync/feature/taxonomy"
)

// FindingKind identifies one category of structural anomaly.
type FindingKind string

const (
	KindNestedSetViolation FindingKind = "nested_set_violation"
	KindLeafContradiction  FindingKind = "leaf_children_contradiction"
	KindDisabledPopulated  FindingKind = "disabled_with_items"
	KindDuplicateSyncUID   FindingKind = "duplicate_sync_uid"
	KindOrphanParent       FindingKind = "orphan_parent"
)

// Finding is one detected anomaly: a machine-readable kind, the affected
// node ids and a human-readable message. Nothing is auto-repaired.
type Finding struct {
	Kind    FindingKind `json:"kind"`
	NodeIDs []int       `json:"node_ids"`
	Message string      `json:"message"`
}

// CheckNestedSet reports nodes whose nested-set bounds are inverted or
// collapsed (lft >= rgt).
func CheckNestedSet(snap *taxonomy.Snapshot) []Finding {
	var out []Finding
	for _, node := range snap.Nodes {
		if node.Lft >= node.Rgt {
			out = append(out, Finding{
				Kind:    KindNestedSetViolation,
				NodeIDs: []int{node.ID},
				Message: fmt.Sprintf("node %d %q has lft=%d >= rgt=%d", node.ID, node.Header, node.Lft, node.Rgt),
			})
		}
	}
	return out
}

// CheckLeafContradictions reports nodes flagged as leaves that still have
// children.
func CheckLeafContradictions(snap *taxonomy.Snapshot) []Finding {
	var out []Finding
	for _, node := range snap.Nodes {
		if node.LastLevel && node.HasChildren {
			out = append(out, Finding{
				Kind:    KindLeafContradiction,
				NodeIDs: []int{node.ID},
				Message: fmt.Sprintf("node %d %q is marked lastLevel but has %d children", node.ID, node.Header, node.ChildrenCount),
			})
		}
	}
	return out
}

// CheckDisabledPopulated reports disabled nodes that still carry items.
func CheckDisabledPopulated(snap *taxonomy.Snapshot) []Finding {
	var out []Finding
	for _, node := range snap.Nodes {
		if !node.Enabled && node.ProductCount > 0 {
			out = append(out, Finding{
				Kind:    KindDisabledPopulated,
				NodeIDs: []int{node.ID},
				Message: fmt.Sprintf("node %d %q is disabled but holds %d items", node.ID, node.Header, node.ProductCount),
			})
		}
	}
	return out
}

// CheckDuplicateSyncUID reports sync identifiers shared by two or more
// distinct nodes. Empty identifiers are ignored.
func CheckDuplicateSyncUID(snap *taxonomy.Snapshot) []Finding {
	byUID := make(map[string][]int)
	for _, node := range snap.Nodes {
		if node.SyncUID == "" {
			continue
		}
		byUID[node.SyncUID] = append(byUID[node.SyncUID], node.ID)
	}

	uids := make([]string, 0, len(byUID))
	for uid, ids := range byUID {
		if len(ids) > 1 {
			uids = append(uids, uid)
		}
	}
	sort.Strings(uids)

	var out []Finding
	for _, uid := range uids {
		ids := byUID[uid]
		sort.Ints(ids)
		out = append(out, Finding{
			Kind:    KindDuplicateSyncUID,
			NodeIDs: ids,
			Message: fmt.Sprintf("sync uid %q is shared by %d nodes", uid, len(ids)),
		})
	}
	return out
}

// CheckOrphans reports nodes whose declared parent id does not exist in the
// same snapshot. A nil parent id is a root, not an orphan.
func CheckOrphans(snap *taxonomy.Snapshot) []Finding {
	var out []Finding
	for _, node := range snap.Nodes {
		if node.ParentID == nil || *node.ParentID == node.ID {
			continue
		}
		if snap.NodeByID(*node.ParentID) == nil {
			out = append(out, Finding{
				Kind:    KindOrphanParent,
				NodeIDs: []int{node.ID},
				Message: fmt.Sprintf("node %d %q declares missing parent %d", node.ID, node.Header, *node.ParentID),
			})
		}
	}
	return out
}

// CheckAll runs every tree check in a fixed order.
func CheckAll(snap *taxonomy.Snapshot) []Finding {
	var out []Finding
	out = append(out, CheckNestedSet(snap)...)
	out = append(out, CheckLeafContradictions(snap)...)
	out = append(out, CheckDisabledPopulated(snap)...)
	out = append(out, CheckDuplicateSyncUID(snap)...)
	out = append(out, CheckOrphans(snap)...)
	return out
}
