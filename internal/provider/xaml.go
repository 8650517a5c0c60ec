package provider

import (
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/standardbeagle/codebind/internal/types"
)

// xamlClassNamespace is the XAML language namespace that carries the
// x:Class attribute.
const xamlClassNamespace = "http://schemas.microsoft.com/winfx/2006/xaml"

// XamlProvider detects WPF-style code-behind: the x:Class attribute on the
// root element of a .xaml file names the backing class.
type XamlProvider struct{}

// NewXamlProvider creates the XAML code-behind provider.
func NewXamlProvider() *XamlProvider {
	return &XamlProvider{}
}

func (p *XamlProvider) Name() string { return "xaml" }

func (p *XamlProvider) ClassName(f *types.ProjectFile) (string, bool) {
	if !strings.EqualFold(pathExt(f.Path), ".xaml") {
		return "", false
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return "", false
	}
	defer file.Close()

	return xamlClass(file)
}

// xamlClass scans XML tokens up to the root element and reads its x:Class
// attribute. Markup without the attribute (resource dictionaries, styles)
// has no code-behind.
func xamlClass(r io.Reader) (string, bool) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local != "Class" {
				continue
			}
			// Accept the canonical namespace, and bare Class for markup
			// that aliases the namespace in uncommon ways
			if attr.Name.Space == xamlClassNamespace || attr.Name.Space == "" {
				name := strings.TrimSpace(attr.Value)
				return name, name != ""
			}
		}
		// Only the root element may declare x:Class
		return "", false
	}
}

func pathExt(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i:]
	}
	return ""
}
