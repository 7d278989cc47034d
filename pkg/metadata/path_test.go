package metadata

import "testing"

func TestCleanPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"root", "/", "/"},
		{"empty", "", "/"},
		{"simple", "/a/b.txt", "/a/b.txt"},
		{"missing leading slash", "a/b", "/a/b"},
		{"repeated slashes", "//a///b", "/a/b"},
		{"trailing slash", "/a/b/", "/a/b"},
		{"root trailing slashes", "///", "/"},
		{"dot segments", "/a/./b/./c", "/a/b/c"},
		{"single dot", "/.", "/"},
		{"dotdot pops", "/a/b/../c", "/a/c"},
		{"dotdot at root is no-op", "/../a", "/a"},
		{"dotdot past root clamps", "/../../..", "/"},
		{"mixed", "//a/.//b/../c///", "/a/c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanPath(tt.in); got != tt.want {
				t.Errorf("CleanPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in       string
		wantDir  string
		wantName string
	}{
		{"/", "/", "/"},
		{"/a", "/", "a"},
		{"/a/b.txt", "/a", "b.txt"},
		{"/a/b/c", "/a/b", "c"},
		{"/a/b/", "/a", "b"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			dir, name := SplitPath(tt.in)
			if dir != tt.wantDir || name != tt.wantName {
				t.Errorf("SplitPath(%q) = (%q, %q), want (%q, %q)",
					tt.in, dir, name, tt.wantDir, tt.wantName)
			}
		})
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		dir  string
		name string
		want string
	}{
		{"/", "a", "/a"},
		{"/a", "b.txt", "/a/b.txt"},
		{"/a/", "b", "/a/b"},
		{"/a", "../c", "/c"},
	}

	for _, tt := range tests {
		if got := JoinPath(tt.dir, tt.name); got != tt.want {
			t.Errorf("JoinPath(%q, %q) = %q, want %q", tt.dir, tt.name, got, tt.want)
		}
	}
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		linkDir string
		target  string
		want    string
	}{
		{"/links", "/etc/hosts", "/etc/hosts"},
		{"/links", "target.txt", "/links/target.txt"},
		{"/links", "../data/file", "/data/file"},
		{"/", "x", "/x"},
		{"/a/b", "./c", "/a/b/c"},
	}

	for _, tt := range tests {
		if got := ResolveTarget(tt.linkDir, tt.target); got != tt.want {
			t.Errorf("ResolveTarget(%q, %q) = %q, want %q", tt.linkDir, tt.target, got, tt.want)
		}
	}
}

func TestHasTrailingSlash(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"/", false},
		{"/a", false},
		{"/a/", true},
		{"/a/b//", true},
	}

	for _, tt := range tests {
		if got := HasTrailingSlash(tt.in); got != tt.want {
			t.Errorf("HasTrailingSlash(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
