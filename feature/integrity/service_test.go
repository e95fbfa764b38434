package integrity

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"catalog-sync/feature/integrity/checks"
	"catalog-sync/feature/taxonomy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckSnapshot_CountsByKind(t *testing.T) {
	snap, err := taxonomy.Flatten(json.RawMessage(`{
		"id": 1, "header": "root", "lft": 1, "rgt": 8, "children": [
			{"id": 2, "header": "broken", "parentId": 1, "lft": 3, "rgt": 2, "lastLevel": true, "children": []},
			{"id": 3, "header": "off", "parentId": 1, "lft": 4, "rgt": 5, "enabled": false, "productCount": 2, "lastLevel": true, "children": []},
			{"id": 4, "header": "orphan", "parentId": 77, "lft": 6, "rgt": 7, "lastLevel": true, "children": []}
		]
	}`))
	require.NoError(t, err)

	svc := NewService(nil, zap.NewNop())
	report := svc.CheckSnapshot(snap)

	assert.Equal(t, 4, report.CheckedNodes)
	assert.Equal(t, 3, report.TotalFindings)
	assert.False(t, report.Truncated)
	assert.Equal(t, 1, report.CountsByKind[checks.KindNestedSetViolation])
	assert.Equal(t, 1, report.CountsByKind[checks.KindDisabledPopulated])
	assert.Equal(t, 1, report.CountsByKind[checks.KindOrphanParent])
}

func TestCheckSnapshot_CapsDisplayNotCount(t *testing.T) {
	var children []string
	for i := 0; i < DisplayCap+20; i++ {
		// Every child has inverted bounds.
		children = append(children, fmt.Sprintf(
			`{"id": %d, "header": "n%d", "parentId": 1, "lft": 9, "rgt": 3, "lastLevel": true, "children": []}`,
			i+2, i+2,
		))
	}
	payload := fmt.Sprintf(
		`{"id": 1, "header": "root", "lft": 1, "rgt": 1000, "children": [%s]}`,
		strings.Join(children, ","),
	)

	snap, err := taxonomy.Flatten(json.RawMessage(payload))
	require.NoError(t, err)

	svc := NewService(nil, zap.NewNop())
	report := svc.CheckSnapshot(snap)

	assert.Equal(t, DisplayCap+20, report.TotalFindings)
	assert.Len(t, report.Findings, DisplayCap)
	assert.True(t, report.Truncated)
	assert.Equal(t, DisplayCap+20, report.CountsByKind[checks.KindNestedSetViolation])
}
