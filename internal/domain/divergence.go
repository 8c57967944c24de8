package domain

// BlockHeightThreshold is the height spread at which pools are considered
// diverged and subscribers get alerted.
const BlockHeightThreshold = 10

// DivergenceReport is the result of evaluating one batch of snapshots.
type DivergenceReport struct {
	Diverged  bool
	MaxHeight uint64
	MinHeight uint64
	Spread    uint64
}

// Detect computes the height spread across a snapshot set.
// Order of the input does not matter. A singleton set has spread 0 and is
// never diverged; an empty set yields the zero report.
func Detect(snapshots []PoolSnapshot) DivergenceReport {
	if len(snapshots) == 0 {
		return DivergenceReport{}
	}

	max := snapshots[0].Height
	min := snapshots[0].Height
	for _, s := range snapshots[1:] {
		if s.Height > max {
			max = s.Height
		}
		if s.Height < min {
			min = s.Height
		}
	}

	spread := max - min
	return DivergenceReport{
		Diverged:  spread >= BlockHeightThreshold,
		MaxHeight: max,
		MinHeight: min,
		Spread:    spread,
	}
}

// CompareReport is the pairwise comparison view between the highest and
// lowest pool in a batch. With exactly two pools this matches the classic
// two-pool compare; with more, the two extremes are compared.
type CompareReport struct {
	Highest       PoolSnapshot
	Lowest        PoolSnapshot
	HeightDiff    uint64
	BlockTimeDiff int64 // seconds, absolute difference of lastBlockFound
	Diverged      bool
}

// Compare builds the pairwise view. At least two snapshots are required.
func Compare(snapshots []PoolSnapshot) (CompareReport, error) {
	if len(snapshots) < 2 {
		return CompareReport{}, ErrNotEnoughPools
	}

	hi, lo := 0, 0
	for i, s := range snapshots {
		if s.Height > snapshots[hi].Height {
			hi = i
		}
		if s.Height < snapshots[lo].Height {
			lo = i
		}
	}
	// All heights equal: keep the first two pools in input order so the
	// report still shows two distinct pools.
	if hi == lo {
		hi, lo = 0, 1
	}

	diff := snapshots[hi].Height - snapshots[lo].Height
	timeDiff := snapshots[hi].LastBlockFound - snapshots[lo].LastBlockFound
	if timeDiff < 0 {
		timeDiff = -timeDiff
	}

	return CompareReport{
		Highest:       snapshots[hi],
		Lowest:        snapshots[lo],
		HeightDiff:    diff,
		BlockTimeDiff: timeDiff,
		Diverged:      diff >= BlockHeightThreshold,
	}, nil
}
