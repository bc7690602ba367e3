package utils

import (
	"os"
	"path/filepath"
	"strings"
)

func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(p string) string {
	if p == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(HomeDir(), p[2:])
	}
	return p
}

// ExpandPaths expands glob patterns into the files they match. Arguments
// without glob metacharacters are passed through untouched so a missing file
// still surfaces as a read error later.
func ExpandPaths(patterns []string) []string {
	var results []string
	for _, pattern := range patterns {
		pattern = ExpandHome(pattern)
		if !strings.ContainsAny(pattern, "*?[") {
			results = append(results, pattern)
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		results = append(results, matches...)
	}
	return results
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
