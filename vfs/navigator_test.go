package vfs_test

import (
	"testing"

	"github.com/PapiCZ/foxfs/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prepareTree(t *testing.T) *vfs.Filesystem {
	t.Helper()

	fs, _ := prepareFS(t)
	require.NoError(t, fs.Create("docs", vfs.KindDirectory))
	require.NoError(t, fs.Create("readme", vfs.KindFile))

	_, err := fs.ChangeDirectory("docs")
	require.NoError(t, err)
	require.NoError(t, fs.Create("2024", vfs.KindDirectory))
	require.NoError(t, fs.Create("plan", vfs.KindFile))

	_, err = fs.ChangeDirectory("/")
	require.NoError(t, err)

	return fs
}

func TestParentOfRoot(t *testing.T) {
	t.Parallel()

	fs, _ := prepareFS(t)

	transition, err := fs.ChangeDirectory("..")
	require.NoError(t, err)
	assert.Equal(t, vfs.AlreadyAtRoot, transition)
	assert.Equal(t, "/", fs.Path())
	assert.Equal(t, vfs.RootDirectoryBlock, fs.CurrentBlock())
}

func TestChangeIntoFile(t *testing.T) {
	t.Parallel()

	fs := prepareTree(t)
	before := entryNames(t, fs)

	transition, err := fs.ChangeDirectory("readme")
	assert.ErrorAs(t, err, &vfs.NotADirectory{})
	assert.Equal(t, vfs.Stayed, transition)
	assert.Equal(t, "/", fs.Path())
	assert.Equal(t, vfs.RootDirectoryBlock, fs.CurrentBlock())
	assert.Equal(t, before, entryNames(t, fs))
}

func TestChangeIntoMissing(t *testing.T) {
	t.Parallel()

	fs := prepareTree(t)

	_, err := fs.ChangeDirectory("nothing")
	assert.Equal(t, vfs.StatusNotFound, vfs.StatusOf(err))
	assert.Equal(t, "/", fs.Path())
}

func TestChangeDirectoryPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path       string
		expected   string
		transition vfs.Transition
	}{
		{"docs", "/docs", vfs.Moved},
		{"docs/2024", "/docs/2024", vfs.Moved},
		{"/docs/2024", "/docs/2024", vfs.Moved},
		{"docs/./2024/", "/docs/2024", vfs.Moved},
		{"docs/2024/..", "/docs", vfs.Moved},
		{".", "/", vfs.Stayed},
		{"../..", "/", vfs.AlreadyAtRoot},
		{"", "/", vfs.Moved},
		{"/", "/", vfs.Moved},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			fs := prepareTree(t)

			transition, err := fs.ChangeDirectory(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.transition, transition)
			assert.Equal(t, tt.expected, fs.Path())
		})
	}
}

func TestChangeDirectoryRestoresOnFailure(t *testing.T) {
	t.Parallel()

	fs := prepareTree(t)

	_, err := fs.ChangeDirectory("docs")
	require.NoError(t, err)
	block := fs.CurrentBlock()

	for _, path := range []string{"2024/missing", "/docs/plan", "../readme/x", "/nothing"} {
		_, err = fs.ChangeDirectory(path)
		assert.Error(t, err, path)
		assert.Equal(t, "/docs", fs.Path(), path)
		assert.Equal(t, block, fs.CurrentBlock(), path)

		// The current directory must still be docs
		_, err = fs.Find("plan")
		assert.NoError(t, err, path)
	}
}

func TestChangeDirectoryFromSubdirectory(t *testing.T) {
	t.Parallel()

	fs := prepareTree(t)

	_, err := fs.ChangeDirectory("docs/2024")
	require.NoError(t, err)
	require.NoError(t, fs.Create("deep", vfs.KindFile))

	transition, err := fs.ChangeDirectory("/")
	require.NoError(t, err)
	assert.Equal(t, vfs.Moved, transition)
	assert.Equal(t, vfs.RootDirectoryBlock, fs.CurrentBlock())

	_, err = fs.ChangeDirectory("docs/2024")
	require.NoError(t, err)
	_, err = fs.Find("deep")
	assert.NoError(t, err)

	transition, err = fs.ChangeDirectory("../..")
	require.NoError(t, err)
	assert.Equal(t, vfs.Moved, transition)
	assert.Equal(t, "/", fs.Path())
	_, err = fs.Find("readme")
	assert.NoError(t, err)
}

func TestTransitionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "stayed", vfs.Stayed.String())
	assert.Equal(t, "moved", vfs.Moved.String())
	assert.Equal(t, "already at root", vfs.AlreadyAtRoot.String())
}

func TestChangeDirectoryRestoresOnReadFailure(t *testing.T) {
	t.Parallel()

	unreadable := vfs.LinkEnd
	device := faultyMock(t, vfs.NewMemoryDevice(),
		func(index vfs.BlockPtr) bool { return index == unreadable },
		func(vfs.BlockPtr) bool { return false })

	fs := vfs.NewFilesystem(device, "NAV")
	require.NoError(t, fs.Format())
	require.NoError(t, fs.Create("docs", vfs.KindDirectory))
	_, err := fs.ChangeDirectory("docs")
	require.NoError(t, err)
	require.NoError(t, fs.Create("2024", vfs.KindDirectory))
	require.NoError(t, fs.Create("plan", vfs.KindFile))

	target, err := fs.Find("2024")
	require.NoError(t, err)
	block := fs.CurrentBlock()
	before := entryNames(t, fs)

	for _, tt := range []struct {
		path       string
		unreadable vfs.BlockPtr
	}{
		{"2024", target.StartBlock()},
		{"/docs/2024", target.StartBlock()},
		{"..", vfs.RootDirectoryBlock},
		{"/", vfs.RootDirectoryBlock},
	} {
		unreadable = tt.unreadable

		transition, err := fs.ChangeDirectory(tt.path)
		assert.Equal(t, vfs.StatusIOError, vfs.StatusOf(err), tt.path)
		assert.Equal(t, vfs.Stayed, transition, tt.path)
		assert.Equal(t, "/docs", fs.Path(), tt.path)
		assert.Equal(t, block, fs.CurrentBlock(), tt.path)
		assert.Equal(t, before, entryNames(t, fs), tt.path)
	}

	unreadable = vfs.LinkEnd
	_, err = fs.ChangeDirectory("2024")
	require.NoError(t, err)
	assert.Equal(t, "/docs/2024", fs.Path())
}
