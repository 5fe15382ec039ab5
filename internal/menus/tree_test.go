package menus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menu(id, parent string, order int, enabled bool) Menu {
	return Menu{ID: id, SiteID: "s1", Name: id, ParentID: parent, DisplayOrder: order, Enabled: enabled}
}

func ids(nodes []Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestBuildOrdersSiblingsStably(t *testing.T) {
	forest := Build([]Menu{
		menu("c", "", 2, true),
		menu("a", "", 1, true),
		menu("b", "", 1, true),
		menu("a2", "a", 5, true),
		menu("a1", "a", 0, true),
	})

	require.Len(t, forest, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(forest))
	assert.Equal(t, []string{"a1", "a2"}, ids(forest[0].Children))
	assert.Empty(t, forest[1].Children)
	assert.NotNil(t, forest[1].Children)
}

func TestBuildDisabledParentHidesSubtree(t *testing.T) {
	forest := Build([]Menu{
		menu("root", "", 0, false),
		menu("child", "root", 0, true),
		menu("grandchild", "child", 0, true),
		menu("other", "", 1, true),
	})

	assert.Equal(t, []string{"other"}, ids(forest))
	assert.Len(t, Flatten(forest), 1)
}

func TestBuildDropsOrphans(t *testing.T) {
	forest := Build([]Menu{
		menu("root", "", 0, true),
		menu("orphan", "missing", 0, true),
	})

	assert.Equal(t, []string{"root"}, ids(forest))
}

func TestBuildIgnoresCycles(t *testing.T) {
	forest := Build([]Menu{
		menu("x", "y", 0, true),
		menu("y", "x", 0, true),
		menu("root", "", 0, true),
	})

	assert.Equal(t, []string{"root"}, ids(forest))
}

func TestBuildEmpty(t *testing.T) {
	forest := Build(nil)
	assert.NotNil(t, forest)
	assert.Empty(t, forest)
}

func TestFlattenDepthFirst(t *testing.T) {
	forest := Build([]Menu{
		menu("a", "", 0, true),
		menu("b", "", 1, true),
		menu("a1", "a", 0, true),
		menu("a1x", "a1", 0, true),
	})

	flat := Flatten(forest)
	got := make([]string, 0, len(flat))
	for _, m := range flat {
		got = append(got, m.ID)
	}
	assert.Equal(t, []string{"a", "a1", "a1x", "b"}, got)
}
