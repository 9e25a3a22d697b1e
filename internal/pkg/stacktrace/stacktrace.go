// Package stacktrace trims raw goroutine stacks down to the project's own
// frames so panic logs stay readable.
package stacktrace

import (
	"bufio"
	"bytes"
	"strings"
)

const marker = "/internal/"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" entries found in
// a stack produced by runtime/debug.Stack, outermost call last.
func InternalPaths(stack []byte) []string {
	var paths []string

	sc := bufio.NewScanner(bytes.NewReader(stack))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "/") && !strings.Contains(line, ":\\") {
			continue
		}

		file, _, _ := strings.Cut(line, " +0x")
		if !strings.Contains(file, ".go:") {
			continue
		}

		idx := strings.Index(file, marker)
		if idx == -1 {
			continue
		}

		paths = append(paths, file[idx+1:])
	}

	return paths
}
