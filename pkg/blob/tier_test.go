package blob

import "testing"

// TestPickTier verifies size-based tier placement.
func TestPickTier(t *testing.T) {
	policy := DefaultTierPolicy()

	tests := []struct {
		name string
		size uint64
		want Tier
	}{
		{
			name: "empty content stays hot",
			size: 0,
			want: TierHot,
		},
		{
			name: "small content stays hot",
			size: 1024,
			want: TierHot,
		},
		{
			name: "hot boundary is inclusive",
			size: 256 * 1024,
			want: TierHot,
		},
		{
			name: "just over hot boundary goes warm",
			size: 256*1024 + 1,
			want: TierWarm,
		},
		{
			name: "warm boundary is inclusive",
			size: 64 * 1024 * 1024,
			want: TierWarm,
		},
		{
			name: "just over warm boundary goes cold",
			size: 64*1024*1024 + 1,
			want: TierCold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.PickTier(tt.size)
			if got != tt.want {
				t.Errorf("PickTier(%d) = %s, want %s", tt.size, got, tt.want)
			}
		})
	}
}

// TestPickTierCustomPolicy verifies a non-default policy is honored.
func TestPickTierCustomPolicy(t *testing.T) {
	policy := TierPolicy{HotMaxBytes: 10, WarmMaxBytes: 100}

	if got := policy.PickTier(10); got != TierHot {
		t.Errorf("PickTier(10) = %s, want %s", got, TierHot)
	}
	if got := policy.PickTier(50); got != TierWarm {
		t.Errorf("PickTier(50) = %s, want %s", got, TierWarm)
	}
	if got := policy.PickTier(101); got != TierCold {
		t.Errorf("PickTier(101) = %s, want %s", got, TierCold)
	}
}
