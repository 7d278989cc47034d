package blob

// TierPolicy decides which storage tier new content lands in, based on
// size thresholds.
//
// The zero value is not useful; construct with DefaultTierPolicy or fill
// both thresholds. Placement is decided once at write time; there is no
// background migration between tiers at this layer.
type TierPolicy struct {
	// HotMaxBytes is the largest blob kept in the hot tier.
	HotMaxBytes uint64

	// WarmMaxBytes is the largest blob kept in the warm tier. Anything
	// larger goes cold.
	WarmMaxBytes uint64
}

// DefaultTierPolicy keeps blobs up to 256 KiB hot and up to 64 MiB warm.
func DefaultTierPolicy() TierPolicy {
	return TierPolicy{
		HotMaxBytes:  256 * 1024,
		WarmMaxBytes: 64 * 1024 * 1024,
	}
}

// PickTier returns the tier for content of the given size.
func (p TierPolicy) PickTier(size uint64) Tier {
	switch {
	case size <= p.HotMaxBytes:
		return TierHot
	case size <= p.WarmMaxBytes:
		return TierWarm
	default:
		return TierCold
	}
}
