package diagram

import (
	"strings"
	"testing"

	"github.com/brettbedarf/treefs/node"
	"github.com/brettbedarf/treefs/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Parallel()

	root := volume.Create[string, node.NoMetadata](nil)
	opts := &volume.Options[node.NoMetadata]{MakeIntermediateDirectories: true}
	var err error
	for _, p := range []string{"/nested/a", "/nested/b", "/top"} {
		root, err = volume.WriteFile(root, p, p, opts)
		require.NoError(t, err)
	}
	root, err = volume.MakeDirectory(root, "/empty", nil)
	require.NoError(t, err)

	out := Render(root, "/")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}

	require.Len(t, lines, 6)
	assert.Equal(t, "/", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "nested/"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "a"), lines[2])
	assert.True(t, strings.HasSuffix(lines[3], "b"), lines[3])
	assert.True(t, strings.HasSuffix(lines[4], "top"), lines[4])
	assert.True(t, strings.HasSuffix(lines[5], "empty/"), lines[5])

	// nested entries are indented further than their parent
	assert.Greater(t, strings.Index(lines[2], "a"), strings.Index(lines[1], "n"))
}

func TestRenderEmpty(t *testing.T) {
	t.Parallel()

	root := volume.Create[string, node.NoMetadata](nil)
	assert.Equal(t, "snapshot", strings.TrimSpace(Render(root, "snapshot")))
}
