package leveling

import "math"

// Hand-tuned thresholds: xpPerLevel[n] is the total XP needed to reach level n.
var xpPerLevel = [...]int64{
	0, 50, 100, 250, 500, 1_000, 1_500, 2_000, 2_500, 3_250, 4_000, 5_000, 6_000, 7_250, 8_500,
	10_000, 11_500, 13_000, 15_000, 17_000, 19_000, 21_000, 23_500, 26_000, 28_500, 31_000, 34_000,
	37_000, 40_000, 43_000, 46_500, 50_000, 53_500, 57_000, 61_000, 65_000, 70_000, 75_000, 80_000,
	85_000, 90_000, 95_000, 100_000, 105_000, 110_000, 115_000, 122_500, 130_000, 137_500, 145_000,
	152_500, 160_000, 167_500, 175_000, 185_000, 195_000, 205_000, 215_000, 225_000, 235_000,
	245_000, 255_000, 265_000, 275_000, 285_000, 295_000, 305_000, 315_000, 325_000, 335_420,
	350_000, 362_500, 375_000, 387_500, 400_000, 412_500, 425_000, 437_500, 450_000, 462_500,
	475_000, 487_500, 500_000, 515_000, 530_000, 545_000, 560_000, 575_000, 590_000, 605_000,
}

// Past the table the increment only changes every incrementFrequency levels.
const incrementFrequency = 10

const tableLength = len(xpPerLevel)

// incrementForLevel returns XPForLevel(level) - XPForLevel(level-1).
//
// Beyond the table, increments are constant across each block of
// incrementFrequency levels and the block increment follows
// ((x mod 9) + 1) * 10^floor(x/9) * 5000 with x = blockIndex + 3, so it cycles
// 20000, 25000, ..., 45000, 50000, 100000, 150000, ...
func incrementForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	if level < tableLength {
		return xpPerLevel[level] - xpPerLevel[level-1]
	}
	block := (level - tableLength) / incrementFrequency
	x := block + 3
	return saturatingMul(int64(x%9+1)*5_000, pow10(x/9))
}

// MaxLevel is the highest level whose threshold fits in an int64. From
// MaxLevel+1 on XPForLevel is pinned at math.MaxInt64, so the curve is strictly
// increasing only up to MaxLevel+1 and LevelForXP never returns more than MaxLevel.
const MaxLevel = 1275

// XPForLevel returns the total XP needed to reach level. Negative levels need no XP.
// Results saturate at math.MaxInt64 above MaxLevel.
func XPForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	if level < tableLength {
		return xpPerLevel[level]
	}
	xp := xpPerLevel[tableLength-1]
	for l := tableLength; l <= level; l++ {
		xp = saturatingAdd(xp, incrementForLevel(l))
		if xp == math.MaxInt64 {
			break
		}
	}
	return xp
}

// LevelForXP returns the level L with XPForLevel(L) <= xp < XPForLevel(L+1).
// Negative XP is treated as 0. At the cap the upper bound is inclusive:
// LevelForXP(math.MaxInt64) is MaxLevel.
func LevelForXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	if xp < xpPerLevel[tableLength-1] {
		lo, hi := 0, tableLength-1
		// first index whose threshold exceeds xp
		for lo < hi {
			mid := (lo + hi) / 2
			if xpPerLevel[mid] > xp {
				hi = mid
			} else {
				lo = mid + 1
			}
		}
		return lo - 1
	}

	level := tableLength - 1
	threshold := xpPerLevel[level]
	for {
		next := saturatingAdd(threshold, incrementForLevel(level+1))
		if next > xp || next == math.MaxInt64 {
			return level
		}
		threshold = next
		level++
	}
}

// Progress describes where an XP total sits on the curve.
type Progress struct {
	Level       int
	XP          int64
	LevelXP     int64 // XP needed for Level
	NextLevelXP int64 // XP needed for Level+1
}

// ProgressFor computes a Progress for xp.
func ProgressFor(xp int64) Progress {
	level := LevelForXP(xp)
	return Progress{
		Level:       level,
		XP:          xp,
		LevelXP:     XPForLevel(level),
		NextLevelXP: XPForLevel(level + 1),
	}
}

// Remaining is the XP still needed to reach the next level.
func (p Progress) Remaining() int64 {
	return p.NextLevelXP - p.XP
}

func pow10(n int) int64 {
	result := int64(1)
	for i := 0; i < n; i++ {
		result = saturatingMul(result, 10)
	}
	return result
}

func saturatingAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func saturatingMul(a, b int64) int64 {
	if a != 0 && b > math.MaxInt64/a {
		return math.MaxInt64
	}
	return a * b
}
