package provider

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codebind/internal/types"
)

const wpfWindow = `<Window x:Class="App.MainWindow"
    xmlns="http://schemas.microsoft.com/winfx/2006/xaml/presentation"
    xmlns:x="http://schemas.microsoft.com/winfx/2006/xaml"
    Title="Main">
  <Grid/>
</Window>
`

const resourceDictionary = `<ResourceDictionary
    xmlns="http://schemas.microsoft.com/winfx/2006/xaml/presentation"
    xmlns:x="http://schemas.microsoft.com/winfx/2006/xaml">
  <Style x:Key="Header"/>
</ResourceDictionary>
`

func tempProjectFile(t *testing.T, name, content string) *types.ProjectFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return &types.ProjectFile{Path: path}
}

func TestXamlProviderClassName(t *testing.T) {
	p := NewXamlProvider()

	name, ok := p.ClassName(tempProjectFile(t, "MainWindow.xaml", wpfWindow))
	require.True(t, ok)
	assert.Equal(t, "App.MainWindow", name)
}

func TestXamlProviderNoClassAttribute(t *testing.T) {
	p := NewXamlProvider()

	_, ok := p.ClassName(tempProjectFile(t, "Styles.xaml", resourceDictionary))
	assert.False(t, ok)
}

func TestXamlProviderIgnoresOtherExtensions(t *testing.T) {
	p := NewXamlProvider()

	_, ok := p.ClassName(tempProjectFile(t, "MainWindow.xaml.cs", "class C {}"))
	assert.False(t, ok)
}

func TestXamlProviderMissingFile(t *testing.T) {
	p := NewXamlProvider()

	_, ok := p.ClassName(&types.ProjectFile{Path: "/nonexistent/Window.xaml"})
	assert.False(t, ok)
}

func TestXamlProviderMalformedMarkup(t *testing.T) {
	p := NewXamlProvider()

	_, ok := p.ClassName(tempProjectFile(t, "Broken.xaml", "<Window"))
	assert.False(t, ok)
}

func TestXamlClassOnlyRootElement(t *testing.T) {
	// x:Class on a nested element is not a code-behind declaration
	nested := strings.Replace(resourceDictionary,
		`<Style x:Key="Header"/>`,
		`<Style x:Class="App.Nested"/>`, 1)

	_, ok := xamlClass(strings.NewReader(nested))
	assert.False(t, ok)
}
