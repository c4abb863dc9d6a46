package assets

import (
	"path"
	"strings"
)

// JoinPath joins dir and elems. The separator follows the convention dir is
// written in: a dir containing only backslashes yields a backslash path,
// anything else a slash path. The result never mixes both.
func JoinPath(dir string, elems ...string) string {
	backslash := strings.Contains(dir, `\`) && !strings.Contains(dir, "/")

	parts := make([]string, 0, len(elems)+1)
	parts = append(parts, strings.ReplaceAll(dir, `\`, "/"))
	for _, e := range elems {
		parts = append(parts, strings.ReplaceAll(e, `\`, "/"))
	}
	joined := path.Join(parts...)

	if backslash {
		return strings.ReplaceAll(joined, "/", `\`)
	}
	return joined
}

// BaseName strips the directory and the last extension from a title path.
// Both separators are recognised.
func BaseName(title string) string {
	if i := strings.LastIndexAny(title, `/\`); i >= 0 {
		title = title[i+1:]
	}
	if i := strings.LastIndexByte(title, '.'); i > 0 {
		title = title[:i]
	}
	return title
}
