package provider

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/standardbeagle/codebind/internal/types"
)

// directivePattern matches the Inherits attribute of an ASP.NET page
// directive, e.g. <%@ Page Language="C#" Inherits="App.Default" %>.
var directivePattern = regexp.MustCompile(
	`(?is)<%@\s*(?:Page|Control|Master)\b[^%]*?\bInherits\s*=\s*"([^"]+)"`)

// AspNetProvider detects Web Forms code-behind: the Inherits attribute of
// the page/control/master directive names the backing class.
type AspNetProvider struct{}

// NewAspNetProvider creates the ASP.NET code-behind provider.
func NewAspNetProvider() *AspNetProvider {
	return &AspNetProvider{}
}

func (p *AspNetProvider) Name() string { return "aspnet" }

func (p *AspNetProvider) ClassName(f *types.ProjectFile) (string, bool) {
	switch strings.ToLower(pathExt(f.Path)) {
	case ".aspx", ".ascx", ".master":
	default:
		return "", false
	}

	// The directive sits at the top of the file; a bounded read is enough
	content, err := readHead(f.Path, 16*1024)
	if err != nil {
		return "", false
	}

	m := directivePattern.FindSubmatch(content)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(string(m[1]))
	return name, name != ""
}

func readHead(path string, limit int) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf := make([]byte, limit)
	n, err := io.ReadFull(file, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}
