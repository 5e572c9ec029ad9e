package main

// GML passes every number as a double. These match the C casts the runner's
// own extensions use.

func boolToDouble(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// doubleToBool is true for anything but zero, NaN included.
func doubleToBool(f float64) bool {
	return f != 0
}

// varHashToID truncates toward zero.
func varHashToID(f float64) int32 {
	return int32(f)
}
