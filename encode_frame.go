package flac

import (
	"github.com/mewkiz/pkg/errutil"

	"github.com/gofreelib/flac/frame"
)

// channelAssignmentFor returns the fixed channel assignment for channel
// counts that offer no decorrelation choice. For two channels the caller
// evaluates all four stereo modes instead.
func channelAssignmentFor(nch int) (frame.ChannelAssignment, error) {
	switch nch {
	case 1:
		return frame.ChannelsMono, nil
	case 3:
		return frame.ChannelsLRC, nil
	case 4:
		return frame.ChannelsLRLsRs, nil
	case 5:
		return frame.ChannelsLRCLsRs, nil
	case 6:
		return frame.ChannelsLRCLfeLsRs, nil
	case 7:
		return frame.Channels7, nil
	case 8:
		return frame.Channels8, nil
	default:
		return 0, errutil.Newf("unsupported channel count %d", nch)
	}
}

// buildFrame picks, per channel, the cheapest subframe encoding and (for
// stereo input) the cheapest of the four channel assignments, by
// estimating bits for every candidate and keeping the smallest total. When
// forceCA is non-nil and the input is stereo, the full four-way search is
// skipped and that assignment is used directly — this is how
// Encoder.LooseMidSideStereo amortizes the search's cost across frames.
func buildFrame(hdr *frame.Header, samples [][]int32, forceCA *frame.ChannelAssignment) ([]frame.SubframePlan, error) {
	nch := len(samples)
	if nch == 2 {
		if forceCA != nil {
			hdr.Channels = *forceCA
			return planForAssignment(samples[0], samples[1], hdr.BitsPerSample, *forceCA), nil
		}
		plans, ca := planStereo(samples[0], samples[1], hdr.BitsPerSample)
		hdr.Channels = ca
		return plans, nil
	}

	ca, err := channelAssignmentFor(nch)
	if err != nil {
		return nil, err
	}
	hdr.Channels = ca
	plans := make([]frame.SubframePlan, nch)
	for ch := range samples {
		plans[ch], _ = planSubframe(samples[ch], hdr.BitsPerSample)
	}
	return plans, nil
}

// planForAssignment builds subframe plans for a caller-chosen stereo
// channel assignment, without comparing it against the alternatives.
func planForAssignment(left, right []int32, bps uint8, ca frame.ChannelAssignment) []frame.SubframePlan {
	switch ca {
	case frame.ChannelsLeftSide:
		leftPlan, _ := planSubframe(left, bps)
		sidePlan, _ := planSubframe(frame.Side(left, right), bps+1)
		return []frame.SubframePlan{leftPlan, sidePlan}
	case frame.ChannelsRightSide:
		sidePlan, _ := planSubframe(frame.Side(left, right), bps+1)
		rightPlan, _ := planSubframe(right, bps)
		return []frame.SubframePlan{sidePlan, rightPlan}
	case frame.ChannelsMidSide:
		midPlan, _ := planSubframe(frame.Mid(left, right), bps)
		sidePlan, _ := planSubframe(frame.Side(left, right), bps+1)
		return []frame.SubframePlan{midPlan, sidePlan}
	default:
		leftPlan, _ := planSubframe(left, bps)
		rightPlan, _ := planSubframe(right, bps)
		return []frame.SubframePlan{leftPlan, rightPlan}
	}
}

// planStereo evaluates LR, LEFT_SIDE, RIGHT_SIDE and MID_SIDE and returns
// the cheapest assignment's subframe plans. The side channel always
// carries one extra bit of precision.
func planStereo(left, right []int32, bps uint8) ([]frame.SubframePlan, frame.ChannelAssignment) {
	leftPlan, leftBits := planSubframe(left, bps)
	rightPlan, rightBits := planSubframe(right, bps)
	sidePlan, sideBits := planSubframe(frame.Side(left, right), bps+1)
	midPlan, midBits := planSubframe(frame.Mid(left, right), bps)

	candidates := []struct {
		ca    frame.ChannelAssignment
		bits  uint64
		plans []frame.SubframePlan
	}{
		{frame.ChannelsLR, leftBits + rightBits, []frame.SubframePlan{leftPlan, rightPlan}},
		{frame.ChannelsLeftSide, leftBits + sideBits, []frame.SubframePlan{leftPlan, sidePlan}},
		{frame.ChannelsRightSide, sideBits + rightBits, []frame.SubframePlan{sidePlan, rightPlan}},
		{frame.ChannelsMidSide, midBits + sideBits, []frame.SubframePlan{midPlan, sidePlan}},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.bits < best.bits {
			best = c
		}
	}
	return best.plans, best.ca
}
