package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codebind/internal/types"
)

// bindingReport is one scan result row.
type bindingReport struct {
	File       string `json:"file"`
	ClassName  string `json:"class_name"`
	Resolved   bool   `json:"resolved"`
	ClassFile  string `json:"class_file,omitempty"`
	Line       int    `json:"line,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func scanCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	env, err := buildEnvironment(cfg)
	if err != nil {
		return err
	}

	unresolvedOnly := c.Bool("unresolved-only")
	var reports []bindingReport
	coll := env.model.Collection()
	for _, p := range coll.Projects {
		for _, f := range p.Files() {
			b := env.service.Binding(f)
			if b.IsZero() {
				continue
			}
			if unresolvedOnly && !b.IsUnresolved() {
				continue
			}
			reports = append(reports, describeBinding(env, f, b))
		}
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	if len(reports) == 0 {
		fmt.Println("No code-behind bindings found.")
		return nil
	}
	for _, r := range reports {
		rel := relToRoot(cfg.Project.Root, r.File)
		if r.Resolved {
			fmt.Printf("%s -> %s (%s:%d)\n", rel, r.ClassName, relToRoot(cfg.Project.Root, r.ClassFile), r.Line)
		} else if r.Suggestion != "" {
			fmt.Printf("%s -> %s (unresolved, did you mean %s?)\n", rel, r.ClassName, r.Suggestion)
		} else {
			fmt.Printf("%s -> %s (unresolved)\n", rel, r.ClassName)
		}
	}
	fmt.Printf("%d binding(s), %d unresolved\n", len(reports), countUnresolved(reports))
	return nil
}

func describeBinding(env *environment, f *types.ProjectFile, b types.Binding) bindingReport {
	r := bindingReport{
		File:      f.Path,
		ClassName: b.FullName(),
		Resolved:  !b.IsUnresolved(),
	}
	if cls := b.Class(); cls != nil {
		r.ClassFile = cls.FilePath
		r.Line = cls.Line
		r.Kind = cls.Kind.String()
	} else if suggestion, ok := env.service.Suggest(b.FullName()); ok {
		r.Suggestion = suggestion
	}
	return r
}

func countUnresolved(reports []bindingReport) int {
	n := 0
	for _, r := range reports {
		if !r.Resolved {
			n++
		}
	}
	return n
}

func relToRoot(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
