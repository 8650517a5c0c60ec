package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cberrors "github.com/standardbeagle/codebind/internal/errors"
	"github.com/standardbeagle/codebind/internal/types"
)

// fakeProvider answers with a fixed name for matching suffixes.
type fakeProvider struct {
	name   string
	suffix string
	class  string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ClassName(pf *types.ProjectFile) (string, bool) {
	if f.suffix != "" && !hasSuffix(pf.Path, f.suffix) {
		return "", false
	}
	return f.class, f.class != ""
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

type countingListener struct {
	added, removed int
}

func (c *countingListener) ProviderAdded(Provider)   { c.added++ }
func (c *countingListener) ProviderRemoved(Provider) { c.removed++ }

func TestRegistryAddRemove(t *testing.T) {
	r := NewRegistry()
	l := &countingListener{}
	r.AddListener(l)

	a := &fakeProvider{name: "a", class: "App.A"}
	require.NoError(t, r.Add(a))
	assert.Equal(t, 1, l.added)
	assert.Len(t, r.Providers(), 1)

	r.Remove(a)
	assert.Equal(t, 1, l.removed)
	assert.Empty(t, r.Providers())

	// Removing again is a no-op
	r.Remove(a)
	assert.Equal(t, 1, l.removed)
}

func TestRegistryRejectsNilProvider(t *testing.T) {
	r := NewRegistry()
	err := r.Add(nil)
	require.Error(t, err)
	var regErr *cberrors.RegistrationError
	assert.ErrorAs(t, err, &regErr)
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	a := &fakeProvider{name: "a", class: "App.A"}
	require.NoError(t, r.Add(a))
	assert.Error(t, r.Add(a))
	assert.Len(t, r.Providers(), 1)
}

func TestRegistryPrecedence(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&fakeProvider{name: "first", suffix: ".xaml", class: "First.Class"}))
	require.NoError(t, r.Add(&fakeProvider{name: "second", suffix: ".xaml", class: "Second.Class"}))

	f := &types.ProjectFile{Path: "/src/MainWindow.xaml"}
	name, ok := r.ClassName(f)
	require.True(t, ok)
	assert.Equal(t, "First.Class", name)
}

func TestRegistryFallsThroughNonMatching(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&fakeProvider{name: "aspx", suffix: ".aspx", class: "Aspx.Class"}))
	require.NoError(t, r.Add(&fakeProvider{name: "xaml", suffix: ".xaml", class: "Xaml.Class"}))

	name, ok := r.ClassName(&types.ProjectFile{Path: "/src/MainWindow.xaml"})
	require.True(t, ok)
	assert.Equal(t, "Xaml.Class", name)

	_, ok = r.ClassName(&types.ProjectFile{Path: "/src/Program.cs"})
	assert.False(t, ok)
}
