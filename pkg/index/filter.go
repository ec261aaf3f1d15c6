package index

import (
	"strings"

	"github.com/csweichel/assetidx/pkg/meta"
)

func filterKey(folder string, recursive bool) string {
	if recursive {
		return folder + "-recursive"
	}
	return folder
}

// inFolder reports whether r sits in folder (or below it when recursive).
// folder is in meta.CleanPath form, the root folder is "/".
func inFolder(r meta.Record, folder string, recursive bool) bool {
	if folder == "/" && recursive {
		return true
	}

	dir := r.Dirname
	if dir == "" {
		dir = "/"
	}
	if recursive {
		return strings.HasPrefix(dir, folder)
	}
	return dir == folder
}

// hiddenFile matches bookkeeping files which are never listed.
func hiddenFile(p string) bool {
	return strings.HasPrefix(p, ".meta/") ||
		strings.Contains(p, "/.meta/") ||
		strings.HasSuffix(p, ".DS_Store") ||
		strings.HasSuffix(p, ".gitkeep") ||
		strings.HasSuffix(p, ".gitignore")
}

func hiddenDir(r meta.Record) bool {
	return r.Basename == ".meta"
}
