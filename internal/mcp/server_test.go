package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codebind/internal/binding"
	"github.com/standardbeagle/codebind/internal/config"
	"github.com/standardbeagle/codebind/internal/project"
	"github.com/standardbeagle/codebind/internal/provider"
	"github.com/standardbeagle/codebind/internal/resolver"
	"github.com/standardbeagle/codebind/internal/types"
)

// fixedProvider reports one class name per exact path.
type fixedProvider struct {
	answers map[string]string
}

func (p *fixedProvider) Name() string { return "fixed" }

func (p *fixedProvider) ClassName(f *types.ProjectFile) (string, bool) {
	name, ok := p.answers[f.Path]
	return name, ok
}

// newTestServer builds a server over a real collection in a temp dir with
// one markup file bound to one code-behind class.
func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()

	csPath := filepath.Join(root, "MainWindow.xaml.cs")
	require.NoError(t, os.WriteFile(csPath, []byte(`namespace App
{
    public partial class MainWindow { }
}
`), 0o644))
	xamlPath := filepath.Join(root, "MainWindow.xaml")
	require.NoError(t, os.WriteFile(xamlPath, []byte("<Window/>"), 0o644))

	cfg := config.Default()
	cfg.Project.Root = filepath.ToSlash(root)

	reg := provider.NewRegistry()
	require.NoError(t, reg.Add(&fixedProvider{answers: map[string]string{
		filepath.ToSlash(xamlPath): "App.MainWindow",
	}}))

	res := resolver.New(cfg.Resolver.SuggestThreshold, 1)
	table := binding.NewTable(reg, res)
	svc := binding.NewService(table, res)

	model := project.NewModel()
	model.AddListener(svc)

	scanner := project.NewScanner(cfg)
	coll, err := scanner.Scan()
	require.NoError(t, err)
	model.OpenCollection(coll)

	return NewServer(cfg, svc, model, reg), filepath.ToSlash(xamlPath)
}

func callTool(t *testing.T, handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error), args interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)

	result, err := handler(context.Background(), &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{
		Arguments: raw,
	}})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "tool responses are text content")

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func TestBindingForFileResolved(t *testing.T) {
	s, xamlPath := newTestServer(t)

	payload := callTool(t, s.handleBindingForFile, pathParams{Path: xamlPath})
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, true, payload["bound"])
	assert.Equal(t, true, payload["resolved"])
	assert.Equal(t, "App.MainWindow", payload["class_name"])

	cls, ok := payload["class"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "class", cls["kind"])
}

func TestBindingForFileRelativePath(t *testing.T) {
	s, _ := newTestServer(t)

	payload := callTool(t, s.handleBindingForFile, pathParams{Path: "MainWindow.xaml"})
	assert.Equal(t, true, payload["bound"])
}

func TestBindingForFileNotCodeBehind(t *testing.T) {
	s, xamlPath := newTestServer(t)

	csPath := xamlPath + ".cs"
	payload := callTool(t, s.handleBindingForFile, pathParams{Path: csPath})
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, false, payload["bound"])
}

func TestBindingForFileUnknownPath(t *testing.T) {
	s, _ := newTestServer(t)

	payload := callTool(t, s.handleBindingForFile, pathParams{Path: "/nowhere/Else.xaml"})
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["error"], "not in collection")
}

func TestBindingForFileMissingPath(t *testing.T) {
	s, _ := newTestServer(t)

	payload := callTool(t, s.handleBindingForFile, map[string]interface{}{})
	assert.Equal(t, false, payload["success"])
}

func TestBoundClassesTool(t *testing.T) {
	s, _ := newTestServer(t)

	payload := callTool(t, s.handleBoundClasses, map[string]interface{}{})
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, float64(1), payload["count"])

	classes, ok := payload["classes"].([]interface{})
	require.True(t, ok)
	require.Len(t, classes, 1)
	cls := classes[0].(map[string]interface{})
	assert.Equal(t, "App.MainWindow", cls["full_name"])
}

func TestCodeBehindOnlyTool(t *testing.T) {
	s, xamlPath := newTestServer(t)

	payload := callTool(t, s.handleCodeBehindOnly, pathParams{Path: xamlPath + ".cs"})
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, true, payload["code_behind_only"])
}

func TestStatusTool(t *testing.T) {
	s, _ := newTestServer(t)

	payload := callTool(t, s.handleStatus, map[string]interface{}{})
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, float64(1), payload["bindings"])
	assert.Equal(t, float64(2), payload["files"])
	assert.Equal(t, []interface{}{"fixed"}, payload["providers"])
}
