package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codebind/internal/types"
)

type captureListener struct {
	changes []*types.ClassChangeSet
}

func (c *captureListener) ClassInformationChanged(cs *types.ClassChangeSet) {
	c.changes = append(c.changes, cs)
}

const mainWindowSource = `using System;

namespace App
{
    public partial class MainWindow
    {
        public MainWindow() {}
    }
}
`

const fileScopedSource = `namespace App.Views;

public class LoginPage {}

public struct Point {}
`

func TestResolverAnalyzeFile(t *testing.T) {
	r := New(0.85, 1)
	require.NoError(t, r.AnalyzeFile(1, "/src/MainWindow.xaml.cs", []byte(mainWindowSource)))

	desc := r.Resolve(1, "App.MainWindow")
	require.NotNil(t, desc)
	assert.Equal(t, "App.MainWindow", desc.FullName)
	assert.Equal(t, "/src/MainWindow.xaml.cs", desc.FilePath)
	assert.Equal(t, types.ClassKindClass, desc.Kind)
	assert.Greater(t, desc.Line, 1)

	classes := r.ClassesInFile("/src/MainWindow.xaml.cs")
	require.Len(t, classes, 1)
	assert.Same(t, desc, classes[0])
}

func TestResolverFileScopedNamespace(t *testing.T) {
	r := New(0.85, 1)
	require.NoError(t, r.AnalyzeFile(1, "/src/LoginPage.cs", []byte(fileScopedSource)))

	require.NotNil(t, r.Resolve(1, "App.Views.LoginPage"))

	pt := r.Resolve(1, "App.Views.Point")
	require.NotNil(t, pt)
	assert.Equal(t, types.ClassKindStruct, pt.Kind)
}

func TestResolverFileScopedNamespaceNestedType(t *testing.T) {
	source := `using System;

namespace App.Views;

public class LoginPage {
    public record State {}
}
`
	r := New(0.85, 1)
	require.NoError(t, r.AnalyzeFile(1, "/src/LoginPage.cs", []byte(source)))

	require.NotNil(t, r.Resolve(1, "App.Views.LoginPage"))
	require.NotNil(t, r.Resolve(1, "App.Views.LoginPage.State"))
	assert.Nil(t, r.Resolve(1, "LoginPage"))
}

func TestResolverNestedClass(t *testing.T) {
	source := `namespace App {
    public class Outer {
        public class Inner {}
    }
}
`
	r := New(0.85, 1)
	require.NoError(t, r.AnalyzeFile(1, "/src/Outer.cs", []byte(source)))

	require.NotNil(t, r.Resolve(1, "App.Outer"))
	require.NotNil(t, r.Resolve(1, "App.Outer.Inner"))
}

func TestResolverUnknownName(t *testing.T) {
	r := New(0.85, 1)
	assert.Nil(t, r.Resolve(1, "App.Nothing"))
}

func TestResolverClassesInFileNeverAnalyzed(t *testing.T) {
	r := New(0.85, 1)
	assert.Nil(t, r.ClassesInFile("/src/Unknown.cs"))

	// An analyzed file with no classes is non-nil empty
	require.NoError(t, r.AnalyzeFile(1, "/src/Empty.cs", []byte("// nothing here\n")))
	classes := r.ClassesInFile("/src/Empty.cs")
	assert.NotNil(t, classes)
	assert.Empty(t, classes)
}

func TestResolverChangeNotifications(t *testing.T) {
	r := New(0.85, 1)
	l := &captureListener{}
	r.AddListener(l)

	require.NoError(t, r.AnalyzeFile(1, "/src/W.xaml.cs", []byte(mainWindowSource)))
	require.Len(t, l.changes, 1)
	assert.Len(t, l.changes[0].Added, 1)
	assert.Empty(t, l.changes[0].Removed)

	// Identical content is skipped by the hash check: no second notification
	require.NoError(t, r.AnalyzeFile(1, "/src/W.xaml.cs", []byte(mainWindowSource)))
	assert.Len(t, l.changes, 1)

	// Renaming the class removes the old name and adds the new one
	renamed := []byte(`namespace App { public class OtherWindow {} }`)
	require.NoError(t, r.AnalyzeFile(1, "/src/W.xaml.cs", renamed))
	require.Len(t, l.changes, 2)
	require.Len(t, l.changes[1].Removed, 1)
	require.Len(t, l.changes[1].Added, 1)
	assert.Equal(t, "App.MainWindow", l.changes[1].Removed[0].FullName)
	assert.Equal(t, "App.OtherWindow", l.changes[1].Added[0].FullName)

	assert.Nil(t, r.Resolve(1, "App.MainWindow"))
	assert.NotNil(t, r.Resolve(1, "App.OtherWindow"))
}

func TestResolverModifiedNotification(t *testing.T) {
	r := New(0.85, 1)
	l := &captureListener{}
	r.AddListener(l)

	require.NoError(t, r.AnalyzeFile(1, "/src/W.xaml.cs", []byte(mainWindowSource)))
	old := r.Resolve(1, "App.MainWindow")

	// Same class name, different body: reported as modified. The
	// descriptor keeps its identity so holders of the pointer stay
	// valid; only its positions change.
	edited := []byte(`namespace App
{
    public partial class MainWindow
    {
        public MainWindow() { Init(); }
        void Init() {}
    }
}
`)
	require.NoError(t, r.AnalyzeFile(1, "/src/W.xaml.cs", edited))
	require.Len(t, l.changes, 2)
	require.Len(t, l.changes[1].Modified, 1)
	assert.Empty(t, l.changes[1].Added)
	assert.Empty(t, l.changes[1].Removed)

	fresh := r.Resolve(1, "App.MainWindow")
	require.NotNil(t, fresh)
	assert.Same(t, old, fresh)
	assert.Same(t, old, l.changes[1].Modified[0])
	assert.Greater(t, fresh.EndLine, fresh.Line)
}

func TestResolverRemoveFile(t *testing.T) {
	r := New(0.85, 1)
	l := &captureListener{}
	r.AddListener(l)

	require.NoError(t, r.AnalyzeFile(1, "/src/W.xaml.cs", []byte(mainWindowSource)))
	r.RemoveFile("/src/W.xaml.cs")

	require.Len(t, l.changes, 2)
	require.Len(t, l.changes[1].Removed, 1)
	assert.Nil(t, r.Resolve(1, "App.MainWindow"))
	assert.Nil(t, r.ClassesInFile("/src/W.xaml.cs"))
}

func TestResolverPartialClassAcrossFiles(t *testing.T) {
	r := New(0.85, 1)
	partialA := []byte(`namespace App { public partial class MainWindow {} }`)
	partialB := []byte(`namespace App { public partial class MainWindow { void Init() {} } }`)

	require.NoError(t, r.AnalyzeFile(1, "/src/MainWindow.xaml.cs", partialA))
	require.NoError(t, r.AnalyzeFile(1, "/src/MainWindow.g.cs", partialB))

	// Removing one declaring file keeps the name resolvable via the other
	r.RemoveFile("/src/MainWindow.g.cs")
	desc := r.Resolve(1, "App.MainWindow")
	require.NotNil(t, desc)
	assert.Equal(t, "/src/MainWindow.xaml.cs", desc.FilePath)
}

func TestResolverIgnoresNonSource(t *testing.T) {
	r := New(0.85, 1)
	require.NoError(t, r.AnalyzeFile(1, "/src/MainWindow.xaml", []byte("<Window/>")))
	assert.Nil(t, r.ClassesInFile("/src/MainWindow.xaml"))
}

func TestResolverSuggest(t *testing.T) {
	r := New(0.85, 1)
	require.NoError(t, r.AnalyzeFile(1, "/src/W.xaml.cs", []byte(mainWindowSource)))

	got, ok := r.Suggest("App.MainWindo")
	require.True(t, ok)
	assert.Equal(t, "App.MainWindow", got)

	_, ok = r.Suggest("Completely.Unrelated.Zzz")
	assert.False(t, ok)
}

func TestResolverAnalyzeCollection(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return filepath.ToSlash(path)
	}

	aPath := write("A.cs", `namespace App { public class A {} }`)
	bPath := write("B.cs", `namespace App { public class B {} }`)
	write("Readme.md", "not source")

	proj := &types.Project{ID: 1, Name: "App", Root: filepath.ToSlash(dir)}
	proj.AddFile(&types.ProjectFile{Path: aPath})
	proj.AddFile(&types.ProjectFile{Path: bPath})
	coll := &types.Collection{Name: "S", Projects: []*types.Project{proj}}

	r := New(0.85, 4)
	l := &captureListener{}
	r.AddListener(l)

	require.NoError(t, r.AnalyzeCollection(context.Background(), coll))
	require.Len(t, l.changes, 1)
	assert.Len(t, l.changes[0].Added, 2)
	assert.NotNil(t, r.Resolve(1, "App.A"))
	assert.NotNil(t, r.Resolve(1, "App.B"))
}
