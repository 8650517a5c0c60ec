package resolver

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"

	"github.com/standardbeagle/codebind/internal/types"
)

// classDecl is one class-like declaration extracted from a C# source file.
type classDecl struct {
	fullName string
	line     int
	endLine  int
	kind     types.ClassKind
}

// csharpParser extracts class, struct, and record declarations with their
// namespace-qualified names. Not safe for concurrent use; the collection
// scan creates one per worker.
type csharpParser struct {
	parser *tree_sitter.Parser
	query  *tree_sitter.Query
}

func newCSharpParser() (*csharpParser, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_csharp.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set C# language: %w", err)
	}

	queryStr := `
        (class_declaration name: (identifier) @class.name) @class
        (struct_declaration name: (identifier) @struct.name) @struct
        (record_declaration name: (identifier) @record.name) @record
    `
	query, _ := tree_sitter.NewQuery(language, queryStr)
	// Tree-sitter Go binding bug: err can be a typed nil which is != nil
	if query == nil {
		parser.Close()
		return nil, fmt.Errorf("failed to compile C# declaration query")
	}

	return &csharpParser{parser: parser, query: query}, nil
}

func (p *csharpParser) close() {
	if p.query != nil {
		p.query.Close()
	}
	if p.parser != nil {
		p.parser.Close()
	}
}

// classes parses content and returns every class-like declaration with its
// qualified name. Parse errors yield whatever declarations tree-sitter
// still recognizes; a broken file is not fatal.
func (p *csharpParser) classes(content []byte) []classDecl {
	tree := p.parser.Parse(content, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	queryMatches := qc.Matches(p.query, tree.RootNode(), content)

	captureNames := p.query.CaptureNames()

	var decls []classDecl
	for {
		match := queryMatches.Next()
		if match == nil {
			break
		}

		for _, c := range match.Captures {
			captureName := captureNames[c.Index]
			var kind types.ClassKind
			switch captureName {
			case "class":
				kind = types.ClassKindClass
			case "struct":
				kind = types.ClassKindStruct
			case "record":
				kind = types.ClassKindRecord
			default:
				continue
			}

			node := c.Node
			name := qualifiedName(&node, content)
			if name == "" {
				continue
			}

			startPoint := node.StartPosition()
			endPoint := node.EndPosition()
			decls = append(decls, classDecl{
				fullName: name,
				line:     int(startPoint.Row) + 1,
				endLine:  int(endPoint.Row) + 1,
				kind:     kind,
			})
		}
	}
	return decls
}

// qualifiedName builds the namespace-qualified name of a declaration node
// by climbing its ancestors: enclosing namespaces and enclosing types each
// contribute one segment. A file-scoped namespace (`namespace App.Views;`)
// is a sibling of the declarations it covers, not an ancestor, so it is
// picked up separately at the compilation unit.
func qualifiedName(node *tree_sitter.Node, content []byte) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}

	segments := []string{nodeText(nameNode, content)}

	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Kind() {
		case "namespace_declaration",
			"class_declaration", "struct_declaration", "record_declaration":
			if pn := parent.ChildByFieldName("name"); pn != nil {
				segments = append(segments, nodeText(pn, content))
			}
		case "compilation_unit":
			if ns := fileScopedNamespace(parent, node, content); ns != "" {
				segments = append(segments, ns)
			}
		}
	}

	// Segments were collected innermost-first
	var sb strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(segments[i])
	}
	return sb.String()
}

// fileScopedNamespace returns the name of the nearest
// file_scoped_namespace_declaration preceding decl under the compilation
// unit, or "" when the file has none.
func fileScopedNamespace(unit, decl *tree_sitter.Node, content []byte) string {
	ns := ""
	for i := uint(0); i < unit.NamedChildCount(); i++ {
		child := unit.NamedChild(i)
		if child == nil || child.StartByte() >= decl.StartByte() {
			break
		}
		if child.Kind() != "file_scoped_namespace_declaration" {
			continue
		}
		if pn := child.ChildByFieldName("name"); pn != nil {
			ns = nodeText(pn, content)
		}
	}
	return ns
}

func nodeText(node *tree_sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}
