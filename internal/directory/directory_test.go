package directory

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/fio/internal/errutil"
	"github.com/Cyclone1070/fio/internal/fsutil"
	"github.com/Cyclone1070/fio/internal/gitutil"
	"github.com/Cyclone1070/fio/internal/testing/mocks"
)

func newMemory(t *testing.T, files ...string) (*Manager, *fsutil.FS) {
	t.Helper()
	fsys := fsutil.NewMemory()
	for _, f := range files {
		require.NoError(t, util.WriteFile(fsys.Backend(), f, []byte(f), 0o644))
	}
	return New(fsys), fsys
}

func assertKind(t *testing.T, err error, kind errutil.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, errutil.KindOf(err), "error: %v", err)
}

func TestCurrentDirectory(t *testing.T) {
	m, fsys := newMemory(t, "/a/b/file.txt")

	cwd, err := m.CurrentDirectory()
	require.NoError(t, err)
	assert.Equal(t, "/", cwd)

	require.NoError(t, m.SetCurrentDirectory("/a"))
	require.NoError(t, m.SetCurrentDirectory("b"))
	cwd, err = m.CurrentDirectory()
	require.NoError(t, err)
	assert.Equal(t, "/a/b", cwd)

	names, err := m.ListEntries("")
	require.NoError(t, err)
	assert.Equal(t, []string{"file.txt"}, names)
	assert.Equal(t, "/a/b/file.txt", fsys.Resolve("file.txt"))

	assertKind(t, m.SetCurrentDirectory("/missing"), errutil.NotFound)
	assertKind(t, m.SetCurrentDirectory("file.txt"), errutil.NotADirectory)
	cwd, err = m.CurrentDirectory()
	require.NoError(t, err)
	assert.Equal(t, "/a/b", cwd, "failed changes keep the previous directory")
}

func TestListEntries(t *testing.T) {
	m, _ := newMemory(t, "/d/c", "/d/a", "/d/b/inner")

	names, err := m.ListEntries("/d")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	_, err = m.ListEntries("/nope")
	assertKind(t, err, errutil.NotFound)
	_, err = m.ListEntries("/d/a")
	assertKind(t, err, errutil.NotADirectory)
}

func TestListVisible(t *testing.T) {
	m, _ := newMemory(t, "/p/.gitignore", "/p/main.go", "/p/debug.log", "/p/build/out")
	require.NoError(t, util.WriteFile(m.fs.Backend(), "/p/.gitignore", []byte("*.log\nbuild/\n"), 0o644))

	names, err := m.ListVisible("/p")
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore", "main.go"}, names)

	all, err := m.ListEntries("/p")
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore", "build", "debug.log", "main.go"}, all)
}

func TestListVisible_WithoutIgnoreFiles(t *testing.T) {
	m, _ := newMemory(t, "/q/b.log", "/q/a.txt")

	names, err := m.ListVisible("/q")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.log"}, names)

	assert.Equal(t, []string{"a", "c"}, visible([]os.FileInfo{
		&mocks.MockFileInfo{NameVal: "c"},
		&mocks.MockFileInfo{NameVal: "a"},
	}, gitutil.NoOpMatcher{}))
}

func TestMakeDirectory(t *testing.T) {
	m, _ := newMemory(t, "/file")

	require.NoError(t, m.MakeDirectory("/new"))
	assert.True(t, m.IsDir("/new"))

	tests := []struct {
		name string
		path string
		want errutil.Kind
	}{
		{"exists", "/new", errutil.AlreadyExists},
		{"exists as file", "/file", errutil.AlreadyExists},
		{"missing parent", "/a/b", errutil.NotFound},
		{"parent is file", "/file/sub", errutil.NotADirectory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertKind(t, m.MakeDirectory(tt.path), tt.want)
		})
	}
	assert.False(t, m.Exists("/a"), "single level only")
}

func TestMakeDirectories(t *testing.T) {
	m, _ := newMemory(t, "/file")

	require.NoError(t, m.MakeDirectories("/a/b/c"))
	assert.True(t, m.IsDir("/a/b/c"))
	require.NoError(t, m.MakeDirectories("/a/b"))
	assertKind(t, m.MakeDirectories("/file"), errutil.AlreadyExists)
}

func TestRename(t *testing.T) {
	m, fsys := newMemory(t, "/src.txt", "/dir/keep")

	assertKind(t, m.Rename("/missing", "/x"), errutil.NotFound)
	assertKind(t, m.Rename("/src.txt", "/nodir/dst.txt"), errutil.NotFound)

	require.NoError(t, m.Rename("/src.txt", "/dir/dst.txt"))
	assert.False(t, m.Exists("/src.txt"))
	data, err := util.ReadFile(fsys.Backend(), "/dir/dst.txt")
	require.NoError(t, err)
	assert.Equal(t, "/src.txt", string(data))
}

func TestRemoveFile(t *testing.T) {
	m, _ := newMemory(t, "/f", "/d/x")

	assertKind(t, m.RemoveFile("/missing"), errutil.NotFound)
	assertKind(t, m.RemoveFile("/d"), errutil.IsADirectory)
	assert.True(t, m.Exists("/d/x"))

	require.NoError(t, m.RemoveFile("/f"))
	assert.False(t, m.Exists("/f"))
}

func TestRemoveEmptyDirectory(t *testing.T) {
	m, _ := newMemory(t, "/full/a", "/full/b", "/f")
	require.NoError(t, m.MakeDirectory("/empty"))

	err := m.RemoveEmptyDirectory("/full")
	assertKind(t, err, errutil.DirectoryNotEmpty)
	assert.True(t, errors.Is(err, errutil.IO))
	names, err := m.ListEntries("/full")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names, "contents are unchanged")

	assertKind(t, m.RemoveEmptyDirectory("/missing"), errutil.NotFound)
	assertKind(t, m.RemoveEmptyDirectory("/f"), errutil.NotADirectory)

	require.NoError(t, m.RemoveEmptyDirectory("/empty"))
	assert.False(t, m.Exists("/empty"))
}

func TestRemoveTree(t *testing.T) {
	m, _ := newMemory(t, "/t/a", "/t/sub/b", "/t/sub/deeper/c", "/other")

	require.NoError(t, m.RemoveTree("/t"))
	assert.False(t, m.Exists("/t"))
	assert.True(t, m.Exists("/other"))

	assertKind(t, m.RemoveTree("/t"), errutil.NotFound)
	assertKind(t, m.RemoveTree("/other"), errutil.NotADirectory)
}

func TestRemoveTree_PartialFailure(t *testing.T) {
	mock := mocks.NewMockFileSystem()
	fsys := fsutil.New(mock)
	for _, f := range []string{"/t/a.txt", "/t/b.txt", "/t/sub/c.txt"} {
		require.NoError(t, util.WriteFile(mock, f, nil, 0o644))
	}
	mock.SetPathError("/t/b.txt", "Remove", syscall.EACCES)
	m := New(fsys)

	err := m.RemoveTree("/t")
	require.Error(t, err)

	var partial *PartialRemovalError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, "/t", partial.Root)
	assert.Equal(t, []string{"/t", "/t/b.txt"}, partial.Remaining)
	assert.Len(t, partial.Errors(), 1)
	assert.Equal(t, errutil.Permission, errutil.KindOf(err))
	assert.Contains(t, err.Error(), "/t/b.txt")

	assert.True(t, m.Exists("/t/b.txt"))
	assert.False(t, m.Exists("/t/a.txt"), "removal continues past failures")
	assert.False(t, m.Exists("/t/sub"))

	mock.ClearOperationError("Remove")
	mock.PathErrors = map[string]map[string]error{}
	require.NoError(t, m.RemoveTree("/t"))
}

func TestRemoveTree_RemainingIsSorted(t *testing.T) {
	mock := mocks.NewMockFileSystem()
	for _, f := range []string{"/t/a/x", "/t/b"} {
		require.NoError(t, util.WriteFile(mock, f, nil, 0o644))
	}
	mock.SetPathError("/t/a/x", "Remove", syscall.EACCES)
	mock.SetPathError("/t/b", "Remove", syscall.EACCES)
	m := New(fsutil.New(mock))

	var partial *PartialRemovalError
	require.ErrorAs(t, m.RemoveTree("/t"), &partial)
	assert.Equal(t, []string{"/t", "/t/a", "/t/a/x", "/t/b"}, partial.Remaining)
	assert.Len(t, partial.Errors(), 2)
}

func TestOS_Manager(t *testing.T) {
	root := t.TempDir()
	prevWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	m := New(fsutil.NewOS())

	require.NoError(t, m.MakeDirectory("work"))
	require.NoError(t, m.SetCurrentDirectory("work"))
	cwd, err := m.CurrentDirectory()
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(filepath.Join(root, "work"))
	require.NoError(t, err)
	cwdResolved, err := filepath.EvalSymlinks(cwd)
	require.NoError(t, err)
	assert.Equal(t, resolved, cwdResolved)

	require.NoError(t, os.WriteFile("one", []byte("1"), 0o644))
	require.NoError(t, m.MakeDirectory("nested"))
	require.NoError(t, os.WriteFile(filepath.Join("nested", "two"), []byte("2"), 0o644))

	names, err := m.ListEntries("")
	require.NoError(t, err)
	assert.Equal(t, []string{"nested", "one"}, names)

	assertKind(t, m.RemoveEmptyDirectory("nested"), errutil.DirectoryNotEmpty)
	assertKind(t, m.RemoveFile("nested"), errutil.IsADirectory)
	assertKind(t, m.MakeDirectory(filepath.Join("x", "y")), errutil.NotFound)
	assertKind(t, m.Rename("ghost", "other"), errutil.NotFound)

	require.NoError(t, m.Rename("one", filepath.Join("nested", "one")))
	require.NoError(t, m.RemoveTree("nested"))
	names, err = m.ListEntries(".")
	require.NoError(t, err)
	assert.Empty(t, names)
}
