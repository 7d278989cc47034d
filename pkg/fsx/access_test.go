package fsx

import (
	"testing"

	"github.com/dot-do/fsx/pkg/metadata"
)

// TestCheckAccess exercises triad selection and bit checks.
func TestCheckAccess(t *testing.T) {
	tests := []struct {
		name  string
		mode  uint32
		uid   uint32
		gid   uint32
		ident Identity
		mask  uint32
		want  bool
	}{
		{
			name:  "owner read on 0444",
			mode:  0o444,
			uid:   1000,
			ident: Identity{UID: 1000},
			mask:  R_OK,
			want:  true,
		},
		{
			name:  "owner write on 0444 denied",
			mode:  0o444,
			uid:   1000,
			ident: Identity{UID: 1000},
			mask:  W_OK,
			want:  false,
		},
		{
			name:  "group rw on 0660 via primary gid",
			mode:  0o660,
			uid:   1000,
			gid:   50,
			ident: Identity{UID: 2000, GID: 50},
			mask:  R_OK | W_OK,
			want:  true,
		},
		{
			name:  "group rw on 0660 via supplementary gid",
			mode:  0o660,
			uid:   1000,
			gid:   50,
			ident: Identity{UID: 2000, GID: 10, Groups: []uint32{30, 50}},
			mask:  R_OK | W_OK,
			want:  true,
		},
		{
			name:  "other denied on 0660",
			mode:  0o660,
			uid:   1000,
			gid:   50,
			ident: Identity{UID: 2000, GID: 60},
			mask:  R_OK,
			want:  false,
		},
		{
			name:  "other read on 0604",
			mode:  0o604,
			uid:   1000,
			gid:   50,
			ident: Identity{UID: 2000, GID: 60},
			mask:  R_OK,
			want:  true,
		},
		{
			name: "owner triad wins even when weaker than group",
			// Owner gets no bits, group gets rw; a matching uid must use
			// the owner triad and be denied.
			mode:  0o060,
			uid:   1000,
			gid:   50,
			ident: Identity{UID: 1000, GID: 50},
			mask:  R_OK,
			want:  false,
		},
		{
			name:  "execute bit on directory means traversable",
			mode:  0o711,
			uid:   1000,
			ident: Identity{UID: 2000},
			mask:  X_OK,
			want:  true,
		},
		{
			name: "special bits are ignored",
			// Setuid plus 0444: read passes, execute still fails.
			mode:  0o4444,
			uid:   1000,
			ident: Identity{UID: 1000},
			mask:  X_OK,
			want:  false,
		},
		{
			name:  "combined mask needs every bit",
			mode:  0o500,
			uid:   1000,
			ident: Identity{UID: 1000},
			mask:  R_OK | W_OK | X_OK,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &metadata.FileEntry{
				ID:   "1",
				Path: "/x",
				Type: metadata.FileTypeRegular,
				Mode: tt.mode,
				UID:  tt.uid,
				GID:  tt.gid,
			}
			if got := checkAccess(entry, tt.ident, tt.mask); got != tt.want {
				t.Errorf("checkAccess(mode %o, uid %d, mask %o) = %v, want %v",
					tt.mode, tt.ident.UID, tt.mask, got, tt.want)
			}
		})
	}
}
