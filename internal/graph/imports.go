package graph

import (
	"path"
	"regexp"
	"strings"
)

// Resolver maps raw import statements to repo-relative file paths.
// Resolution is intra-repository only: imports that do not land on a
// known file (standard library, third-party packages) are silently
// dropped rather than failing the build.
type Resolver struct {
	files  map[string]struct{}
	goDirs map[string][]string // directory -> .go files in it
}

// NewResolver builds a resolver over the known repository files.
func NewResolver(files []string) *Resolver {
	r := &Resolver{
		files:  make(map[string]struct{}, len(files)),
		goDirs: make(map[string][]string),
	}
	for _, f := range files {
		r.files[f] = struct{}{}
		if strings.HasSuffix(f, ".go") && !strings.HasSuffix(f, "_test.go") {
			dir := path.Dir(f)
			r.goDirs[dir] = append(r.goDirs[dir], f)
		}
	}
	return r
}

// Extract parses import statements from content and resolves them to
// repo-relative paths. srcPath anchors relative imports; language is
// the scanner's detected language for the file.
func (r *Resolver) Extract(srcPath, content, language string) []string {
	var raw []string
	switch language {
	case "go":
		raw = goImports(content)
	case "python":
		raw = pythonImports(content)
	case "javascript", "typescript":
		raw = jsImports(content)
	default:
		return nil
	}

	seen := make(map[string]struct{})
	var resolved []string
	for _, imp := range raw {
		for _, target := range r.resolve(srcPath, imp, language) {
			if target == srcPath {
				continue
			}
			if _, dup := seen[target]; dup {
				continue
			}
			seen[target] = struct{}{}
			resolved = append(resolved, target)
		}
	}
	return resolved
}

func (r *Resolver) resolve(srcPath, imp, language string) []string {
	switch language {
	case "go":
		return r.resolveGo(imp)
	case "python":
		return r.resolvePython(srcPath, imp)
	default:
		return r.resolveJS(srcPath, imp)
	}
}

// resolveGo matches an import path against repository directories by
// trying progressively shorter suffixes, so both bare module paths
// ("scout/internal/store") and plain relative layouts resolve. A
// package import depends on every .go file in the matched directory.
func (r *Resolver) resolveGo(imp string) []string {
	segments := strings.Split(imp, "/")
	for i := 0; i < len(segments); i++ {
		dir := strings.Join(segments[i:], "/")
		if files, ok := r.goDirs[dir]; ok {
			return files
		}
	}
	return nil
}

func (r *Resolver) resolvePython(srcPath, imp string) []string {
	var base string
	if strings.HasPrefix(imp, ".") {
		// Relative import: each leading dot walks one directory up.
		dots := 0
		for dots < len(imp) && imp[dots] == '.' {
			dots++
		}
		base = path.Dir(srcPath)
		for i := 1; i < dots; i++ {
			base = path.Dir(base)
		}
		imp = imp[dots:]
	}

	rel := strings.ReplaceAll(imp, ".", "/")
	candidates := []string{}
	if rel != "" {
		candidates = append(candidates, rel+".py", rel+"/__init__.py")
		if base != "" && base != "." {
			candidates = append(candidates, path.Join(base, rel)+".py", path.Join(base, rel, "__init__.py"))
		}
	} else if base != "" {
		candidates = append(candidates, path.Join(base, "__init__.py"))
	}

	for _, c := range candidates {
		if _, ok := r.files[c]; ok {
			return []string{c}
		}
	}
	return nil
}

func (r *Resolver) resolveJS(srcPath, imp string) []string {
	if !strings.HasPrefix(imp, ".") {
		// Bare specifiers are package imports, never repo files.
		return nil
	}
	base := path.Join(path.Dir(srcPath), imp)

	candidates := []string{base}
	for _, ext := range []string{".ts", ".tsx", ".js", ".jsx", ".mjs"} {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range []string{".ts", ".tsx", ".js", ".jsx"} {
		candidates = append(candidates, path.Join(base, "index"+ext))
	}

	for _, c := range candidates {
		if _, ok := r.files[c]; ok {
			return []string{c}
		}
	}
	return nil
}

var (
	goImportLine   = regexp.MustCompile(`^\s*(?:[\w.]+\s+)?"([^"]+)"`)
	goSingleImport = regexp.MustCompile(`^\s*import\s+(?:[\w.]+\s+)?"([^"]+)"`)
	pythonImportRe = regexp.MustCompile(`^\s*import\s+([\w.]+)`)
	pythonFromRe   = regexp.MustCompile(`^\s*from\s+([\w.]+|\.+[\w.]*)\s+import`)
	jsImportFromRe = regexp.MustCompile(`(?:import|export)\s[^'"]*from\s+['"]([^'"]+)['"]`)
	jsBareImportRe = regexp.MustCompile(`^\s*import\s+['"]([^'"]+)['"]`)
	jsRequireRe    = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
)

// goImports handles both single import lines and import blocks.
func goImports(content string) []string {
	var imports []string
	inBlock := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case inBlock:
			if trimmed == ")" {
				inBlock = false
				continue
			}
			if m := goImportLine.FindStringSubmatch(line); m != nil {
				imports = append(imports, m[1])
			}
		case strings.HasPrefix(trimmed, "import ("):
			inBlock = true
		default:
			if m := goSingleImport.FindStringSubmatch(line); m != nil {
				imports = append(imports, m[1])
			}
		}
	}
	return imports
}

func pythonImports(content string) []string {
	var imports []string
	for _, line := range strings.Split(content, "\n") {
		if m := pythonFromRe.FindStringSubmatch(line); m != nil {
			imports = append(imports, m[1])
			continue
		}
		if m := pythonImportRe.FindStringSubmatch(line); m != nil {
			// "import a.b, c" lists only the first module; good enough
			// for file-level edges.
			imports = append(imports, m[1])
		}
	}
	return imports
}

func jsImports(content string) []string {
	var imports []string
	for _, line := range strings.Split(content, "\n") {
		if m := jsImportFromRe.FindStringSubmatch(line); m != nil {
			imports = append(imports, m[1])
			continue
		}
		if m := jsBareImportRe.FindStringSubmatch(line); m != nil {
			imports = append(imports, m[1])
			continue
		}
		for _, m := range jsRequireRe.FindAllStringSubmatch(line, -1) {
			imports = append(imports, m[1])
		}
	}
	return imports
}
