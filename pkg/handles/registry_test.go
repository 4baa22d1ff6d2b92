package handles

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/webdriverd/pkg/browser"
	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
)

type fakeNode struct {
	id     int
	parent *fakeNode
	root   bool
}

func (n *fakeNode) Parent() browser.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *fakeNode) IsDocumentRoot() bool { return n.root }

func (n *fakeNode) Equal(other browser.Node) bool {
	o, ok := other.(*fakeNode)
	return ok && o.id == n.id
}

type window = browser.Window

type fakeWindow struct {
	window
	name string
}

func tree() (root, child, grandchild *fakeNode) {
	root = &fakeNode{id: 1, root: true}
	child = &fakeNode{id: 2, parent: root}
	grandchild = &fakeNode{id: 3, parent: child}
	return root, child, grandchild
}

func TestRegisterBrowser_AlwaysFresh(t *testing.T) {
	r := NewRegistry()
	win := &fakeWindow{name: "a"}

	h1 := r.RegisterBrowser(win)
	h2 := r.RegisterBrowser(win)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, []string{h1, h2}, r.BrowserHandles())

	got, err := r.ResolveBrowser(h1)
	require.NoError(t, err)
	assert.Same(t, win, got)

	found, ok := r.BrowserHandleFor(win)
	assert.True(t, ok)
	assert.Equal(t, h1, found)
}

func TestResolveBrowser_Unknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.ResolveBrowser("missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoSuchWindow))
	assert.Equal(t, apperrors.StatusNoSuchWindow, apperrors.StatusCode(err))
}

func TestUnregisterBrowser_Idempotent(t *testing.T) {
	r := NewRegistry()
	h := r.RegisterBrowser(&fakeWindow{})
	r.UnregisterBrowser(h)
	r.UnregisterBrowser(h)
	assert.Equal(t, 0, r.BrowserCount())
	assert.Empty(t, r.BrowserHandles())
}

func TestRegisterElement_Deduplicates(t *testing.T) {
	r := NewRegistry()
	_, child, grandchild := tree()

	h1 := r.RegisterElement(child, "w")
	h2 := r.RegisterElement(&fakeNode{id: 2, parent: child.parent}, "w")
	h3 := r.RegisterElement(grandchild, "w")

	assert.Equal(t, h1, h2, "equal nodes share a handle")
	assert.NotEqual(t, h1, h3, "distinct nodes get distinct handles")
	assert.Equal(t, 2, r.ElementCount())

	node, win, err := r.ResolveElement(h3)
	require.NoError(t, err)
	assert.Same(t, grandchild, node)
	assert.Equal(t, "w", win)
}

func TestValidateElement(t *testing.T) {
	t.Run("attached", func(t *testing.T) {
		r := NewRegistry()
		_, _, grandchild := tree()
		h := r.RegisterElement(grandchild, "w")

		node, err := r.ValidateElement(h)
		require.NoError(t, err)
		assert.Same(t, grandchild, node)
	})

	t.Run("stale is one-way", func(t *testing.T) {
		r := NewRegistry()
		_, child, grandchild := tree()
		h := r.RegisterElement(grandchild, "w")

		child.parent = nil

		_, err := r.ValidateElement(h)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStaleElement))

		// Reattaching the node does not revive the handle.
		child.parent = &fakeNode{id: 1, root: true}
		_, _, err = r.ResolveElement(h)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoSuchElement))
		_, err = r.ValidateElement(h)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoSuchElement))
	})

	t.Run("unknown", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.ValidateElement("nope")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoSuchElement))
	})
}

func TestHandlesNeverReused(t *testing.T) {
	r := NewRegistry()
	_, child, _ := tree()

	h1 := r.RegisterElement(child, "w")
	r.UnregisterElement(h1)
	r.UnregisterElement(h1)
	h2 := r.RegisterElement(child, "w")

	assert.NotEqual(t, h1, h2)
}

func TestWithHandleFunc(t *testing.T) {
	n := 0
	r := NewRegistry(WithHandleFunc(func() string {
		n++
		return fmt.Sprintf("h%d", n)
	}))
	assert.Equal(t, "h1", r.RegisterBrowser(&fakeWindow{}))
	assert.Equal(t, "h2", r.RegisterElement(&fakeNode{id: 1, root: true}, "h1"))

	r.Clear()
	assert.Equal(t, 0, r.BrowserCount())
	assert.Equal(t, 0, r.ElementCount())
}
