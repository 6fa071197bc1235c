package unarchive

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/nguyengg/unarchive/posixpath"
)

// pathPolicy turns raw entry paths into output paths.
type pathPolicy struct {
	baseDir   string
	normalize bool
	keepDot   bool
	strip     int
	include   []string
	exclude   []string
}

func (c *config) rootPolicy() pathPolicy {
	return pathPolicy{
		baseDir:   c.BaseDir,
		normalize: !c.NoNormalize,
		keepDot:   c.KeepDotDir,
		strip:     c.StripComponents,
		include:   c.Include,
		exclude:   c.Exclude,
	}
}

// child returns the policy of a nested archive found at the given path.
//
// Only the normalization and dot directory settings are inherited.
func (p pathPolicy) child(path string) pathPolicy {
	baseDir := posixpath.Dirname(path)
	if baseDir == "." {
		baseDir = ""
	}

	return pathPolicy{baseDir: baseDir, normalize: p.normalize, keepDot: p.keepDot}
}

// apply returns the output path and false if the entry must be dropped.
//
// The steps are in order: normalization, include and exclude patterns, dot directory suppression, component
// stripping, base directory prefix.
func (p pathPolicy) apply(path string, typ EntryType) (string, bool) {
	if path != "" && p.normalize {
		path = posixpath.Normalize(path)
	}

	if !p.matches(path) {
		return "", false
	}

	if !p.keepDot && typ == TypeDir && path == "." {
		return "", false
	}

	if p.strip > 0 {
		parts := posixpath.Split(path)
		if len(parts) <= p.strip {
			return "", false
		}
		path = strings.Join(parts[p.strip:], posixpath.Sep)
	}

	if p.baseDir != "" && path != "" && !posixpath.IsAbsolute(path) {
		if p.normalize {
			path = posixpath.Join(p.baseDir, path)
		} else {
			path = strings.TrimSuffix(p.baseDir, posixpath.Sep) + posixpath.Sep + path
		}
	}

	return path, true
}

// hardlink returns the target of a hard link, which names another entry of the same archive, transformed the same way
// as that entry's path. Patterns do not apply. Returns "" if stripping removes the whole target.
func (p pathPolicy) hardlink(target string) string {
	if target == "" {
		return ""
	}

	p.include, p.exclude = nil, nil
	target, _ = p.apply(target, TypeFile)
	return target
}

func (p pathPolicy) matches(path string) bool {
	if len(p.include) != 0 {
		included := false
		for _, pattern := range p.include {
			if ok, _ := doublestar.Match(pattern, path); ok {
				included = true
				break
			}
		}

		if !included {
			return false
		}
	}

	for _, pattern := range p.exclude {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return false
		}
	}

	return true
}
