package analysis

import "math/bits"

// subsets enumerates the non-empty subsets of {0..d-1} as bitmasks, ordered by
// size and then lexicographically by their sorted members.
func subsets(d int) []uint {
	out := make([]uint, 0, (1<<uint(d))-1)
	for k := 1; k <= d; k++ {
		combo := make([]int, k)
		for i := range combo {
			combo[i] = i
		}
		for {
			var mask uint
			for _, c := range combo {
				mask |= 1 << uint(c)
			}
			out = append(out, mask)

			i := k - 1
			for i >= 0 && combo[i] == d-k+i {
				i--
			}
			if i < 0 {
				break
			}
			combo[i]++
			for j := i + 1; j < k; j++ {
				combo[j] = combo[j-1] + 1
			}
		}
	}
	return out
}

// members lists the indices set in mask in ascending order.
func members(mask uint) []int {
	out := make([]int, 0, bits.OnesCount(mask))
	for i := 0; mask != 0; i++ {
		if mask&1 != 0 {
			out = append(out, i)
		}
		mask >>= 1
	}
	return out
}

// subMasks lists every subset of mask, including zero and mask itself.
func subMasks(mask uint) []uint {
	out := []uint{}
	for s := mask; ; s = (s - 1) & mask {
		out = append(out, s)
		if s == 0 {
			break
		}
	}
	return out
}
