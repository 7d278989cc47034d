package metadata

import "strings"

// Path normalization
// ==================
//
// Every store keys entries by a normalized absolute path, so normalization
// lives next to the data model rather than in the operation layer. The
// rules match Unix path cleaning:
//
//   - A single leading slash is enforced ("a/b" → "/a/b")
//   - Repeated slashes collapse ("//a///b" → "/a/b")
//   - "." segments are dropped
//   - ".." pops the previous segment, clamped at root (popping past root
//     is a no-op, not an error)
//   - The trailing slash is stripped except for the root itself
//
// CleanPath is a pure function with no failure mode: any input string maps
// to some normalized path.

// CleanPath normalizes a path string to its canonical form.
func CleanPath(path string) string {
	segments := strings.Split(path, "/")
	stack := make([]string, 0, len(segments))

	for _, segment := range segments {
		switch segment {
		case "", ".":
			// Empty segments come from repeated or leading/trailing
			// slashes; both are dropped.
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, segment)
		}
	}

	if len(stack) == 0 {
		return "/"
	}
	return "/" + strings.Join(stack, "/")
}

// SplitPath splits a normalized path into its parent directory and final
// component. The root splits into ("/", "/").
func SplitPath(path string) (dir, name string) {
	path = CleanPath(path)
	if path == "/" {
		return "/", "/"
	}

	idx := strings.LastIndexByte(path, '/')
	name = path[idx+1:]
	if idx == 0 {
		return "/", name
	}
	return path[:idx], name
}

// JoinPath joins a directory path and a name into a normalized path.
func JoinPath(dir, name string) string {
	return CleanPath(dir + "/" + name)
}

// ResolveTarget resolves a symlink target against the directory containing
// the symlink. Absolute targets are used as-is; relative targets are
// interpreted relative to linkDir.
func ResolveTarget(linkDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return CleanPath(target)
	}
	return JoinPath(linkDir, target)
}

// HasTrailingSlash reports whether the raw, pre-normalization path ends
// with a slash (excluding the root path itself). The operation layer uses
// this to reject "file/" with a not-a-directory error, information that is
// lost after CleanPath.
func HasTrailingSlash(path string) bool {
	return len(path) > 1 && strings.HasSuffix(path, "/")
}
