package chaindb

import (
	"fmt"
	"iter"
	"sort"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
)

// BlockRange is a half-open [Start, Stop) range of block heights.
type BlockRange struct {
	Start int
	Stop  int
}

// Empty reports whether the range covers no blocks.
func (r BlockRange) Empty() bool {
	return r.Start >= r.Stop
}

// Segment is a contiguous sub-sequence of the chain, a view over the shared
// block table rather than a copy. Segments from one partition are disjoint,
// so independent workers can each own one with no shared mutable state.
type Segment struct {
	Range BlockRange
	chain *Blockchain
}

// BlockCount returns the number of blocks in the segment.
func (s Segment) BlockCount() int {
	return s.Range.Stop - s.Range.Start
}

// TxCount returns the number of transactions in the segment.
func (s Segment) TxCount() uint64 {
	return s.chain.chain.TransactionsBefore(s.Range.Stop) - s.chain.chain.TransactionsBefore(s.Range.Start)
}

// Blocks lazily yields the segment's blocks in height order.
func (s Segment) Blocks() iter.Seq[model.Block] {
	return s.chain.chain.BlockRange(s.Range.Start, s.Range.Stop)
}

// SegmentIndexes partitions the visible heights into n contiguous ranges
// holding as close to an equal number of transactions each as block
// boundaries allow. Block transaction density varies enormously over chain
// history, so boundaries are found by binary-searching the per-block
// transaction prefix sums rather than dividing heights evenly. When n
// exceeds the block count, trailing ranges come back empty.
func (b *Blockchain) SegmentIndexes(n int) ([]BlockRange, error) {
	if n <= 0 {
		return nil, fmt.Errorf("segment count %d: %w", n, model.ErrInvalidArgument)
	}

	size := b.chain.BlockCount()
	total := b.chain.TxCount()

	bounds := make([]int, n+1)
	bounds[n] = size
	for j := 1; j < n; j++ {
		target := total * uint64(j) / uint64(n)
		// Smallest height whose prefix sum reaches the target.
		h := sort.Search(size, func(i int) bool {
			return b.chain.TransactionsBefore(i) >= target
		})
		if h < bounds[j-1] {
			h = bounds[j-1]
		}
		bounds[j] = h
	}

	ranges := make([]BlockRange, n)
	for j := 0; j < n; j++ {
		ranges[j] = BlockRange{Start: bounds[j], Stop: bounds[j+1]}
	}
	return ranges, nil
}

// Segment materializes SegmentIndexes(n) as block-sequence views.
func (b *Blockchain) Segment(n int) ([]Segment, error) {
	ranges, err := b.SegmentIndexes(n)
	if err != nil {
		return nil, err
	}
	segments := make([]Segment, len(ranges))
	for i, r := range ranges {
		segments[i] = Segment{Range: r, chain: b}
	}
	return segments, nil
}
