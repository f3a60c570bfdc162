package dex

import (
	"encoding/json"
	"fmt"
	"math/big"
	"math/bits"
	"strconv"

	"github.com/holiman/uint256"
)

// Bitmap marks initialized ticks at tick-spacing granularity, 256 ticks per word.
// Words are never modified in place, so a shallow map copy is a safe snapshot.
type Bitmap map[int32]*uint256.Int

var bitOne = uint256.NewInt(1)

func compress(tick, tickSpacing int32) int32 {
	compressed := tick / tickSpacing
	if tick < 0 && tick%tickSpacing != 0 {
		compressed--
	}
	return compressed
}

func wordPosition(compressed int32) (int32, uint) {
	return compressed >> 8, uint(compressed & 0xff)
}

func (b Bitmap) word(index int32) *uint256.Int {
	if w, ok := b[index]; ok && w != nil {
		return w
	}
	return new(uint256.Int)
}

func (b Bitmap) clone() Bitmap {
	out := make(Bitmap, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// FlipTick toggles the initialized bit of tick.
func (b Bitmap) FlipTick(tick, tickSpacing int32) error {
	if tick%tickSpacing != 0 {
		return validationf("Tick is not spaced %d %d", tick, tickSpacing)
	}
	index, bit := wordPosition(tick / tickSpacing)
	mask := new(uint256.Int).Lsh(bitOne, bit)
	next := new(uint256.Int).Xor(b.word(index), mask)
	if next.IsZero() {
		delete(b, index)
		return nil
	}
	b[index] = next
	return nil
}

// IsInitialized reports whether the bit of tick is set.
func (b Bitmap) IsInitialized(tick, tickSpacing int32) bool {
	if tick%tickSpacing != 0 {
		return false
	}
	index, bit := wordPosition(tick / tickSpacing)
	masked := new(uint256.Int).And(b.word(index), new(uint256.Int).Lsh(bitOne, bit))
	return !masked.IsZero()
}

// NextInitializedTickWithinOneWord returns the next initialized tick in the same
// word as tick, searching at or below tick when lte is set and strictly above it
// otherwise. When no bit is set the word boundary is returned with initialized false.
func (b Bitmap) NextInitializedTickWithinOneWord(tick, tickSpacing int32, lte bool) (next int32, initialized bool) {
	compressed := compress(tick, tickSpacing)

	if lte {
		index, bit := wordPosition(compressed)
		// bits at or right of the current one
		mask := new(uint256.Int).Lsh(bitOne, bit+1)
		mask.Sub(mask, bitOne)
		masked := new(uint256.Int).And(b.word(index), mask)
		if masked.IsZero() {
			return (compressed - int32(bit)) * tickSpacing, false
		}
		msb := masked.BitLen() - 1
		return (compressed - int32(bit) + int32(msb)) * tickSpacing, true
	}

	index, bit := wordPosition(compressed + 1)
	// bits at or left of the next one
	mask := new(uint256.Int).Lsh(bitOne, bit)
	mask.Sub(mask, bitOne)
	mask.Not(mask)
	masked := new(uint256.Int).And(b.word(index), mask)
	if masked.IsZero() {
		return (compressed + 1 + int32(255-bit)) * tickSpacing, false
	}
	return (compressed + 1 + int32(leastSignificantBit(masked)) - int32(bit)) * tickSpacing, true
}

func leastSignificantBit(x *uint256.Int) int {
	for i := 0; i < 4; i++ {
		if x[i] != 0 {
			return i*64 + bits.TrailingZeros64(x[i])
		}
	}
	return 256
}

// MarshalJSON encodes words as decimal strings keyed by word index.
func (b Bitmap) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(b))
	for index, w := range b {
		if w == nil || w.IsZero() {
			continue
		}
		out[strconv.FormatInt(int64(index), 10)] = w.ToBig().String()
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (b *Bitmap) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Bitmap, len(raw))
	for key, value := range raw {
		index, err := strconv.ParseInt(key, 10, 32)
		if err != nil {
			return fmt.Errorf("parse bitmap word index %q: %w", key, err)
		}
		n, ok := new(big.Int).SetString(value, 10)
		if !ok {
			return fmt.Errorf("parse bitmap word %q", value)
		}
		w, overflow := uint256.FromBig(n)
		if overflow {
			return fmt.Errorf("bitmap word %q overflows 256 bits", value)
		}
		if !w.IsZero() {
			out[int32(index)] = w
		}
	}
	*b = out
	return nil
}
