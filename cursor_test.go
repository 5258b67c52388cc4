package arenatree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor(t *testing.T) {
	a, tok := sampleTree(t)

	c := a.SubtreeCursor(tok["B"], PreOrder)
	for c.Next() {
		*c.Value() += "!"
	}

	assert.Equal(t, []string{"root", "A", "B!", "D!", "E!", "C"}, names(a, a.Subtree(tok["root"], PreOrder)))

	// Exhausted cursors release the arena.
	assert.NotPanics(t, func() { a.Append(tok["A"], "x") })
	assert.False(t, c.Next())
	requirePanicsInvariant(t, func() { c.Value() })
}

func TestCursorSession(t *testing.T) {
	a, tok := sampleTree(t)

	c := a.ChildrenCursor(tok["root"])
	require.True(t, c.Next())
	assert.Equal(t, tok["A"], c.Token())

	requirePanicsInvariant(t, func() { a.AncestorsCursor(tok["D"]) })
	requirePanicsInvariant(t, func() { a.Append(tok["A"], "x") })
	requirePanicsInvariant(t, func() { a.Detach(tok["B"]) })
	requirePanicsInvariant(t, func() { a.Uproot(tok["C"]) })
	requirePanicsInvariant(t, func() { a.NewNode("x") })
	requirePanicsInvariant(t, func() { a.Reserve(100) })

	// Reads and payload writes stay allowed.
	assert.Equal(t, []string{"D", "E"}, names(a, a.Children(tok["B"])))
	a.Node(tok["C"]).Data = "c"

	c.Close()
	c.Close()

	assert.NotPanics(t, func() { a.Append(tok["A"], "x") })
	assert.Equal(t, 7, a.Len())
	require.NoError(t, a.Validate())
}

func TestMutIterators(t *testing.T) {
	a, tok := sampleTree(t)

	for _, v := range a.SubtreeMut(tok["root"], PostOrder) {
		*v = strings.ToLower(*v)
	}

	assert.Equal(t, []string{"root", "a", "b", "d", "e", "c"}, names(a, a.Subtree(tok["root"], PreOrder)))

	for _, v := range a.ChildrenMut(tok["B"]) {
		*v += "1"
	}

	for _, v := range a.AncestorsMut(tok["E"]) {
		*v += "2"
	}

	for _, v := range a.PrecedingSiblingsMut(tok["C"]) {
		*v += "3"
	}

	for _, v := range a.FollowingSiblingsMut(tok["A"]) {
		*v += "4"
	}

	assert.Equal(t,
		[]string{"root2", "a3", "b234", "d1", "e1", "c4"},
		names(a, a.Subtree(tok["root"], PreOrder)),
	)

	t.Run("break closes", func(t *testing.T) {
		for range a.ChildrenMut(tok["root"]) {
			break
		}

		assert.NotPanics(t, func() { a.Append(tok["A"], "x") })
	})

	t.Run("panic closes", func(t *testing.T) {
		assert.Panics(t, func() {
			for range a.SubtreeMut(tok["root"], LevelOrder) {
				panic("boom")
			}
		})

		assert.NotPanics(t, func() { a.Append(tok["A"], "y") })
	})

	t.Run("mutation inside loop", func(t *testing.T) {
		requirePanicsInvariant(t, func() {
			for tk := range a.ChildrenMut(tok["root"]) {
				a.Uproot(tk)
			}
		})

		require.NoError(t, a.Validate())
	})

	t.Run("nested", func(t *testing.T) {
		requirePanicsInvariant(t, func() {
			for range a.ChildrenMut(tok["root"]) {
				for range a.ChildrenMut(tok["B"]) {
				}
			}
		})
	})
}
