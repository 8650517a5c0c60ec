package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codebind/internal/config"
)

// setupTestProject creates a minimal WPF-shaped project on disk.
func setupTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"MainWindow.xaml": `<Window x:Class="App.MainWindow"
    xmlns="http://schemas.microsoft.com/winfx/2006/xaml/presentation"
    xmlns:x="http://schemas.microsoft.com/winfx/2006/xaml">
</Window>`,
		"MainWindow.xaml.cs": `namespace App
{
    public partial class MainWindow { }
}
`,
		"Orphan.xaml": `<Page x:Class="App.Missing"
    xmlns:x="http://schemas.microsoft.com/winfx/2006/xaml">
</Page>`,
		"Helpers.cs": `namespace App
{
    public static class Helpers { }
}
`,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func testContext(t *testing.T, root string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("config", "", "")
	set.String("root", "", "")
	set.Var(cli.NewStringSlice(), "include", "")
	set.Var(cli.NewStringSlice(), "exclude", "")
	set.String("rules", "", "")
	require.NoError(t, set.Set("root", root))
	return cli.NewContext(nil, set, nil)
}

func TestLoadConfigWithOverrides(t *testing.T) {
	root := setupTestProject(t)
	c := testContext(t, root)
	require.NoError(t, c.Set("exclude", "**/Generated/**"))

	cfg, err := loadConfigWithOverrides(c)
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(root), cfg.Project.Root)
	assert.Contains(t, cfg.Scan.Exclude, "**/Generated/**")
	assert.Contains(t, cfg.Scan.Exclude, "**/obj/**", "defaults survive appended excludes")
}

func TestLoadConfigWithExplicitFile(t *testing.T) {
	root := setupTestProject(t)
	cfgDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "site.kdl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`project {
    root "`+filepath.ToSlash(root)+`"
}
watch {
    debounce_ms 50
}
`), 0o644))

	c := testContext(t, "")
	require.NoError(t, c.Set("config", cfgPath))

	cfg, err := loadConfigWithOverrides(c)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(root), filepath.Clean(cfg.Project.Root))
	assert.Equal(t, 50, cfg.Watch.DebounceMs)

	require.NoError(t, c.Set("config", filepath.Join(cfgDir, "missing.kdl")))
	_, err = loadConfigWithOverrides(c)
	require.Error(t, err)
}

func TestBuildEnvironment(t *testing.T) {
	root := setupTestProject(t)

	cfg := config.Default()
	cfg.Project.Root = filepath.ToSlash(root)
	require.NoError(t, config.ValidateConfig(cfg))

	env, err := buildEnvironment(cfg)
	require.NoError(t, err)

	// MainWindow.xaml resolved, Orphan.xaml unresolved
	assert.Equal(t, 2, env.service.Len())

	coll := env.model.Collection()
	require.NotNil(t, coll)
	require.Len(t, coll.Projects, 1)

	var resolved, unresolved int
	for _, f := range coll.Projects[0].Files() {
		b := env.service.Binding(f)
		switch {
		case b.IsZero():
		case b.IsUnresolved():
			unresolved++
			assert.Equal(t, "App.Missing", b.FullName())
		default:
			resolved++
			assert.Equal(t, "App.MainWindow", b.Class().FullName)
		}
	}
	assert.Equal(t, 1, resolved)
	assert.Equal(t, 1, unresolved)
}

func TestBuildEnvironmentWithRuleFile(t *testing.T) {
	root := setupTestProject(t)
	rulePath := filepath.Join(root, "codebehind.rules.toml")
	require.NoError(t, os.WriteFile(rulePath, []byte(`[[rule]]
pattern = "**/*.xaml"
template = "App.{name}"
`), 0o644))

	cfg := config.Default()
	cfg.Project.Root = filepath.ToSlash(root)
	cfg.Providers.Xaml = false
	cfg.Providers.AspNet = false
	cfg.Providers.RuleFile = rulePath
	require.NoError(t, config.ValidateConfig(cfg))

	env, err := buildEnvironment(cfg)
	require.NoError(t, err)

	// Both markup files get names from the rule; only MainWindow resolves
	assert.Equal(t, 2, env.service.Len())
}

func TestBuildEnvironmentBadRuleFile(t *testing.T) {
	root := setupTestProject(t)

	cfg := config.Default()
	cfg.Project.Root = filepath.ToSlash(root)
	cfg.Providers.RuleFile = filepath.Join(root, "missing.toml")

	_, err := buildEnvironment(cfg)
	require.Error(t, err)
}

func TestDescribeBindingSuggestion(t *testing.T) {
	root := setupTestProject(t)

	// Misspell the orphan's class so the suggestion engine has a near miss
	require.NoError(t, os.WriteFile(filepath.Join(root, "Orphan.xaml"), []byte(`<Page x:Class="App.MainWindw"
    xmlns:x="http://schemas.microsoft.com/winfx/2006/xaml">
</Page>`), 0o644))

	cfg := config.Default()
	cfg.Project.Root = filepath.ToSlash(root)
	require.NoError(t, config.ValidateConfig(cfg))

	env, err := buildEnvironment(cfg)
	require.NoError(t, err)

	for _, f := range env.model.Collection().Projects[0].Files() {
		b := env.service.Binding(f)
		if b.IsUnresolved() {
			r := describeBinding(env, f, b)
			assert.Equal(t, "App.MainWindow", r.Suggestion)
			return
		}
	}
	t.Fatal("expected an unresolved binding")
}
