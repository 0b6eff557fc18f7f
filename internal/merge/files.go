package merge

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// DefaultExtensions are the documentation file types merged by default.
var DefaultExtensions = []string{".md", ".rst", ".txt", ".adoc"}

// FilterDocumentationFiles keeps existing regular files whose extension is
// in exts, dropping duplicates and preserving order.
func FilterDocumentationFiles(paths, exts []string) []string {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := lo.SliceToMap(exts, func(ext string) (string, struct{}) {
		return normalizeExt(ext), struct{}{}
	})

	docs := lo.Filter(paths, func(p string, _ int) bool {
		if _, ok := allowed[strings.ToLower(filepath.Ext(p))]; !ok {
			return false
		}
		info, err := os.Stat(p)
		return err == nil && info.Mode().IsRegular()
	})
	return lo.Uniq(lo.Map(docs, func(p string, _ int) string { return filepath.Clean(p) }))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
