package resolver

import (
	"path/filepath"
	"strings"
)

// resolvePath admits an import path against the sandbox in the fixed
// order spec.md §4.2 and the original resolver both use: suspicious
// encoding, absolute path, parent traversal, sensitive location,
// canonicalization + allowed-root containment, then symlink safety.
// Each rejection carries a distinct, already-categorized error.
func (r *Resolver) resolvePath(importPath string) (string, error) {
	if strings.Contains(importPath, "%") {
		return "", errSuspiciousPath(importPath, "URL-encoding marker")
	}
	if strings.ContainsRune(importPath, 0) {
		return "", errSuspiciousPath(importPath, "null byte")
	}
	if strings.Contains(importPath, "//") || strings.Contains(importPath, "\\/") || strings.Contains(importPath, "/\\") {
		return "", errSuspiciousPath(importPath, "doubled or mixed slash sequence")
	}
	if filepath.IsAbs(importPath) || strings.HasPrefix(importPath, "\\") {
		return "", errSuspiciousPath(importPath, "absolute path")
	}
	if hasParentTraversal(importPath) {
		return "", errSuspiciousPath(importPath, "parent directory traversal")
	}

	joined := filepath.Join(r.cfg.BaseDir, importPath)
	canonical, err := filepath.Abs(joined)
	if err != nil {
		return "", errImportNotFound(importPath)
	}
	canonical = filepath.Clean(canonical)

	for _, sensitive := range sensitiveLocations {
		if strings.HasPrefix(canonical, sensitive) || strings.Contains(canonical, sensitive) {
			return "", errSensitiveLocation(importPath)
		}
	}

	if !withinAllowedRoots(canonical, r.cfg.AllowedRoots, r.cfg.BaseDir) {
		return "", errSymlinkEscape(importPath)
	}

	resolved, err := filepath.EvalSymlinks(canonical)
	if err == nil {
		resolved = filepath.Clean(resolved)
		if !withinAllowedRoots(resolved, r.cfg.AllowedRoots, r.cfg.BaseDir) {
			return "", errSymlinkEscape(importPath)
		}
		canonical = resolved
	}
	// A missing file is reported later by the read step as ImportNotFound;
	// EvalSymlinks failing because the file does not exist yet is fine here.

	return canonical, nil
}

func hasParentTraversal(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

func withinAllowedRoots(canonical string, roots []string, baseDir string) bool {
	for _, root := range roots {
		rootAbs, err := filepath.Abs(filepath.Join(baseDir, root))
		if err != nil {
			continue
		}
		rootAbs = filepath.Clean(rootAbs)
		if canonical == rootAbs || strings.HasPrefix(canonical, rootAbs+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
