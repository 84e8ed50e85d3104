package evalconst

import "fmt"

var intWidths = []int{8, 16, 32, 64, 128}
var ratWidths = []int{16, 32, 64, 128, 256}
var floatWidths = []int{32, 64, 128}
var complexWidths = []int{64, 128, 256}

// roundUpWidth returns the smallest entry of widths that is >= want,
// clamping to the largest available width if want exceeds every entry —
// the promotion table in spec.md §4.3 computes an ideal bit width
// algebraically (e.g. "twice the max input width"), which will not
// always land exactly on one of the fixed hardware-backed sizes this core
// actually instantiates.
func roundUpWidth(want int, widths []int) int {
	for _, w := range widths {
		if w >= want {
			return w
		}
	}
	return widths[len(widths)-1]
}

func builtinIntName(bits int, signed bool) string {
	if signed {
		return fmt.Sprintf("i%d", bits)
	}
	return fmt.Sprintf("u%d", bits)
}

func builtinRatName(bits int) string   { return fmt.Sprintf("r%d", bits) }
func builtinFloatName(bits int) string { return fmt.Sprintf("f%d", bits) }
func builtinComplexName(bits int) string { return fmt.Sprintf("c%d", bits) }
