package frame

// Stereo decorrelation: forward transforms used by the encoder when
// evaluating LEFT_SIDE, RIGHT_SIDE and MID_SIDE channel assignments, and
// the corresponding inverse transforms used by the decoder to recover L/R.

// Side computes the side channel L-R, common to all three decorrelation
// modes.
func Side(left, right []int32) []int32 {
	side := make([]int32, len(left))
	for i := range side {
		side[i] = left[i] - right[i]
	}
	return side
}

// Mid computes the mid channel (L+R)>>1 used by MID_SIDE.
func Mid(left, right []int32) []int32 {
	mid := make([]int32, len(left))
	for i := range mid {
		mid[i] = (left[i] + right[i]) >> 1
	}
	return mid
}

// RestoreLeftSide recovers right from a decoded left channel and side
// channel: R = L - S.
func RestoreLeftSide(left, side []int32) (right []int32) {
	right = make([]int32, len(left))
	for i := range right {
		right[i] = left[i] - side[i]
	}
	return right
}

// RestoreRightSide recovers left from a decoded side channel and right
// channel: L = S + R.
func RestoreRightSide(side, right []int32) (left []int32) {
	left = make([]int32, len(right))
	for i := range left {
		left[i] = side[i] + right[i]
	}
	return left
}

// RestoreMidSide recovers left and right from decoded mid and side
// channels: M' = (M<<1) | (S&1); L = (M'+S)>>1; R = (M'-S)>>1.
func RestoreMidSide(mid, side []int32) (left, right []int32) {
	left = make([]int32, len(mid))
	right = make([]int32, len(mid))
	for i := range mid {
		m2 := (mid[i] << 1) | (side[i] & 1)
		left[i] = (m2 + side[i]) >> 1
		right[i] = (m2 - side[i]) >> 1
	}
	return left, right
}
