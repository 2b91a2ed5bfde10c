// Command check_boundaries enforces the import rules between the layers of
// every governance module. Run it from the repository root:
//
//	go run ./scripts/check_boundaries.go
//
// It exits non-zero and lists each offending import when a rule is broken.
// The same checks run under go test ./scripts/.
package main

import (
	"flag"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
)

// Amounts are decimals in every layer.
const decimalModule = "github.com/shopspring/decimal"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists what a layer may import besides the standard library.
// local entries are layers of the same module; repo entries are packages of
// this repository outside contexts/.
type layerRule struct {
	local      []string
	repo       []string
	thirdParty []string
}

// Adapters and module wiring are unrestricted within their own module.
var layerRules = map[string]layerRule{
	"domain": {
		local:      []string{"domain"},
		thirdParty: []string{decimalModule},
	},
	"ports": {
		local:      []string{"domain", "ports"},
		repo:       []string{"contracts"},
		thirdParty: []string{decimalModule},
	},
	"application": {
		local:      []string{"application", "domain", "ports"},
		repo:       []string{"contracts"},
		thirdParty: []string{decimalModule},
	},
	"transport": {
		local:      []string{"transport"},
		thirdParty: []string{decimalModule},
	},
}

type checker struct {
	root       string
	modulePath string
}

func main() {
	root := flag.String("root", ".", "repository root containing go.mod")
	flag.Parse()

	c, err := newChecker(*root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	violations, err := c.collectViolations()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func newChecker(root string) (*checker, error) {
	raw, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return nil, fmt.Errorf("read go.mod: %w", err)
	}
	modulePath := modfile.ModulePath(raw)
	if modulePath == "" {
		return nil, fmt.Errorf("go.mod under %s has no module directive", root)
	}
	return &checker{root: root, modulePath: modulePath}, nil
}

func (c *checker) collectViolations() ([]violation, error) {
	var violations []violation

	err := filepath.WalkDir(filepath.Join(c.root, "contexts"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		rel, err := filepath.Rel(c.root, path)
		if err != nil {
			return err
		}
		normalized := filepath.ToSlash(rel)
		parts := strings.Split(normalized, "/")
		// contexts/<context>/<module>/<layer>/...; files directly under the
		// module directory are wiring.
		if len(parts) < 4 {
			return nil
		}
		layer := parts[3]
		if len(parts) == 4 {
			layer = ""
		}
		modulePrefix := fmt.Sprintf("%s/contexts/%s/%s", c.modulePath, parts[1], parts[2])

		violations = append(violations, c.validateFile(path, normalized, layer, modulePrefix)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			if violations[i].Line == violations[j].Line {
				return violations[i].Import < violations[j].Import
			}
			return violations[i].Line < violations[j].Line
		}
		return violations[i].File < violations[j].File
	})
	return violations, nil
}

func (c *checker) validateFile(path string, normalizedPath string, layer string, modulePrefix string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalizedPath, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		report := func(rule string) {
			violations = append(violations, violation{
				File:   normalizedPath,
				Line:   fset.Position(imp.Pos()).Line,
				Import: importPath,
				Rule:   rule,
			})
		}

		if hasPrefix(importPath, c.modulePath+"/contexts") && !hasPrefix(importPath, modulePrefix) {
			report("cross-module imports are forbidden")
			continue
		}

		rule, restricted := layerRules[layer]
		if !restricted {
			continue
		}
		switch {
		case strings.Contains(importPath, "/adapters/") || strings.HasSuffix(importPath, "/adapters"):
			report(layer + " must not import adapters")
		case hasPrefix(importPath, c.modulePath+"/internal"):
			report(layer + " must not import runtime infrastructure")
		case !c.isStdlib(importPath) && !c.allowed(importPath, modulePrefix, rule):
			report(layer + " import is outside explicit allowlist")
		}
	}
	return violations
}

func (c *checker) allowed(importPath string, modulePrefix string, rule layerRule) bool {
	for _, local := range rule.local {
		if hasPrefix(importPath, modulePrefix+"/"+local) {
			return true
		}
	}
	for _, repo := range rule.repo {
		if hasPrefix(importPath, c.modulePath+"/"+repo) {
			return true
		}
	}
	for _, external := range rule.thirdParty {
		if hasPrefix(importPath, external) {
			return true
		}
	}
	return false
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Standard library paths have no dot in their first element; this module's
// path may not have one either.
func (c *checker) isStdlib(importPath string) bool {
	if hasPrefix(importPath, c.modulePath) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
