// Package rice implements FLAC's partitioned Rice/Golomb residual coder
// (spec component E): folded-residual precompute, partition-sum precompute,
// Rice parameter selection, escape-coding fallback, and the bit-count
// estimate used to choose a partition order.
package rice

import (
	"fmt"
	"math/bits"

	"github.com/icza/bitio"
	ibits "github.com/gofreelib/flac/internal/bits"
)

// EscapeParam is the reserved Rice parameter value signaling that a
// partition is stored as raw fixed-width binary instead of Rice-coded.
const EscapeParam = 15

// MaxParam is the highest usable Rice parameter; EscapeParam is reserved.
const MaxParam = 14

// Partition holds the coding parameters chosen for one residual partition.
type Partition struct {
	Param                uint8
	EscapedBitsPerSample uint8 // only meaningful when Param == EscapeParam
}

// Partitioning is a full residual coding plan: a partition order and one
// Partition per 2^Order partitions.
type Partitioning struct {
	Order      uint8
	Partitions []Partition
}

// silog2 returns the minimum number of bits needed to represent v in two's
// complement, used to size escape-coded partitions.
func silog2(v int32) uint8 {
	if v == 0 {
		return 0
	}
	var u uint32
	if v < 0 {
		u = uint32(-(v + 1))
	} else {
		u = uint32(v)
	}
	return uint8(bits.Len32(u)) + 1
}

// partitionLength returns the number of residual samples stored in
// partition p of nparts, given the block and predictor order.
func partitionLength(blockSize, predictorOrder, nparts, p int) int {
	l := blockSize / nparts
	if p == 0 {
		l -= predictorOrder
	}
	return l
}

// bestParam picks the Rice parameter minimizing the estimated bit count
// for a partition of length l whose ZigZag-folded residuals sum to sum, using the
// LOCO-I (asymmetric) rule: the smallest k with l*2^k >= sum.
func bestParam(sum uint64, l int) uint8 {
	if l == 0 {
		return 0
	}
	var k uint8
	for k < MaxParam && (uint64(l)<<k) < sum {
		k++
	}
	return k
}

// bitsForParam estimates the encoded length in bits of a partition of
// length l with ZigZag-folded residual sum of sum, coded with parameter k: 4 bits
// for the parameter field is NOT included (callers add per-partition
// header bits themselves).
func bitsForParam(sum uint64, l int, k uint8) uint64 {
	return uint64(l)*(uint64(k)+1) + (sum >> k)
}

// Plan searches partition orders in [minOrder, maxOrder] and returns the
// cheapest Partitioning together with its total bit cost, including the
// 4-bit partition-order field, each partition's parameter field, and
// (when cheaper) escape coding. maxOrder must satisfy blockSize being
// evenly divisible by 2^maxOrder and the first partition outliving the
// predictor order; callers are expected to have already clamped maxOrder
// accordingly (see MaxUsableOrder).
func Plan(residual []int32, blockSize, predictorOrder, minOrder, maxOrder int, escapeCoding bool) (Partitioning, uint64) {
	absRes := make([]uint32, len(residual))
	for i, r := range residual {
		folded := ibits.EncodeZigZag(r)
		absRes[i] = folded
	}

	sums := partitionSumsFromZigZag(absRes, blockSize, predictorOrder, maxOrder)

	var best Partitioning
	bestBits := ^uint64(0)
	for order := minOrder; order <= maxOrder; order++ {
		nparts := 1 << uint(order)
		parts := make([]Partition, nparts)
		total := uint64(4) // partition-order field
		idx := 0
		for p := 0; p < nparts; p++ {
			l := partitionLength(blockSize, predictorOrder, nparts, p)
			sum := sums[order][p]
			k := bestParam(sum, l)
			paramBits := bitsForParam(sum, l, k)
			paramFieldBits := uint64(4)
			cost := paramFieldBits + paramBits

			part := Partition{Param: k}
			if escapeCoding {
				maxBits := maxAbsBits(residual[idx : idx+l])
				escCost := paramFieldBits + 5 + uint64(l)*uint64(maxBits)
				if escCost < cost {
					cost = escCost
					part = Partition{Param: EscapeParam, EscapedBitsPerSample: maxBits}
				}
			}
			parts[p] = part
			total += cost
			idx += l
		}
		if total < bestBits {
			bestBits = total
			best = Partitioning{Order: uint8(order), Partitions: parts}
		}
	}
	return best, bestBits
}

func maxAbsBits(residual []int32) uint8 {
	var maxBits uint8
	for _, r := range residual {
		if b := silog2(r); b > maxBits {
			maxBits = b
		}
	}
	return maxBits
}

func partitionSumsFromZigZag(folded []uint32, blockSize, predictorOrder, maxOrder int) [][]uint64 {
	nmax := 1 << uint(maxOrder)
	sums := make([][]uint64, maxOrder+1)
	sums[maxOrder] = make([]uint64, nmax)
	partLen := blockSize / nmax
	idx := 0
	for p := 0; p < nmax; p++ {
		l := partLen
		if p == 0 {
			l -= predictorOrder
		}
		var sum uint64
		for i := 0; i < l; i++ {
			sum += uint64(folded[idx+i])
		}
		sums[maxOrder][p] = sum
		idx += l
	}
	for order := maxOrder - 1; order >= 0; order-- {
		n := 1 << uint(order)
		sums[order] = make([]uint64, n)
		for p := 0; p < n; p++ {
			sums[order][p] = sums[order+1][2*p] + sums[order+1][2*p+1]
		}
	}
	return sums
}

// MaxUsableOrder returns the largest partition order for which blockSize
// divides evenly into 2^order parts and the first partition still has at
// least one sample after subtracting predictorOrder.
func MaxUsableOrder(blockSize, predictorOrder, cap int) int {
	order := 0
	for order < cap {
		next := order + 1
		nparts := 1 << uint(next)
		if blockSize%nparts != 0 {
			break
		}
		if blockSize/nparts <= predictorOrder {
			break
		}
		order = next
	}
	return order
}

// Encode writes the partitioned Rice residual to bw: the 4-bit partition
// order, then per partition the parameter field and the residuals (Rice
// or, for an escaped partition, raw signed binary).
func Encode(bw *bitio.Writer, residual []int32, blockSize, predictorOrder int, p Partitioning) error {
	if err := bw.WriteBits(uint64(p.Order), 4); err != nil {
		return err
	}
	nparts := 1 << uint(p.Order)
	idx := 0
	for i, part := range p.Partitions {
		l := partitionLength(blockSize, predictorOrder, nparts, i)
		if err := bw.WriteBits(uint64(part.Param), 4); err != nil {
			return err
		}
		if part.Param == EscapeParam {
			if err := bw.WriteBits(uint64(part.EscapedBitsPerSample), 5); err != nil {
				return err
			}
			for j := 0; j < l; j++ {
				if err := bw.WriteBits(uint64(uint32(residual[idx+j])), part.EscapedBitsPerSample); err != nil {
					return err
				}
			}
		} else {
			for j := 0; j < l; j++ {
				if err := encodeOne(bw, part.Param, residual[idx+j]); err != nil {
					return err
				}
			}
		}
		idx += l
	}
	return nil
}

func encodeOne(bw *bitio.Writer, k uint8, residual int32) error {
	folded := ibits.EncodeZigZag(residual)
	high := folded >> k
	low := folded & ((1 << k) - 1)
	if err := ibits.WriteUnary(bw, uint64(high)); err != nil {
		return err
	}
	if k == 0 {
		return nil
	}
	return bw.WriteBits(uint64(low), k)
}

// Decode reads a partitioned Rice residual of the given block size and
// predictor order from r.
func Decode(r *ibits.Reader, blockSize, predictorOrder int) ([]int32, Partitioning, error) {
	order, err := r.ReadBits(4)
	if err != nil {
		return nil, Partitioning{}, err
	}
	nparts := 1 << order
	if blockSize%nparts != 0 {
		return nil, Partitioning{}, fmt.Errorf("rice.Decode: block size %d not divisible by %d partitions", blockSize, nparts)
	}

	residual := make([]int32, 0, blockSize-predictorOrder)
	parts := make([]Partition, nparts)
	for i := 0; i < nparts; i++ {
		l := partitionLength(blockSize, predictorOrder, nparts, i)
		param, err := r.ReadBits(4)
		if err != nil {
			return nil, Partitioning{}, err
		}
		if param == EscapeParam {
			rawBits, err := r.ReadBits(5)
			if err != nil {
				return nil, Partitioning{}, err
			}
			parts[i] = Partition{Param: EscapeParam, EscapedBitsPerSample: uint8(rawBits)}
			for j := 0; j < l; j++ {
				v, err := r.ReadSigned(uint8(rawBits))
				if err != nil {
					return nil, Partitioning{}, err
				}
				residual = append(residual, int32(v))
			}
			continue
		}
		parts[i] = Partition{Param: uint8(param)}
		for j := 0; j < l; j++ {
			v, err := decodeOne(r, uint8(param))
			if err != nil {
				return nil, Partitioning{}, err
			}
			residual = append(residual, v)
		}
	}
	return residual, Partitioning{Order: uint8(order), Partitions: parts}, nil
}

func decodeOne(r *ibits.Reader, k uint8) (int32, error) {
	high, err := r.ReadUnary()
	if err != nil {
		return 0, err
	}
	var low uint64
	if k > 0 {
		low, err = r.ReadBits(k)
		if err != nil {
			return 0, err
		}
	}
	folded := uint32(high<<k) | uint32(low)
	return ibits.DecodeZigZag(folded), nil
}
