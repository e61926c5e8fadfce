package diff

import (
	"regexp"
	"strings"
)

// DevNull is the path git prints for the missing side of an added or
// deleted file.
const DevNull = "/dev/null"

var newFileHeader = regexp.MustCompile(`(?m)^\+\+\+\s+b/(.+)$`)

// ChangedFiles returns the paths named in the "+++ b/<path>" headers of a
// unified diff, in first-seen order and without duplicates, keeping at most
// maxFiles entries. Text without such headers yields an empty list.
func ChangedFiles(diff string, maxFiles int) []string {
	files := []string{}
	seen := make(map[string]bool)
	for _, m := range newFileHeader.FindAllStringSubmatch(diff, -1) {
		path := strings.TrimSpace(m[1])
		if path == DevNull || path == "" || seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}
	if maxFiles >= 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}
	return files
}
