// Package coord implements the packed grid addressing used across the
// whole system: a cell at (x, y) is addressed by the single integer
// x + (y << 16).
package coord

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Coord is a packed grid address.
type Coord uint32

// FromXY packs a grid position into a Coord. Both components are masked
// to 16 bits, so values outside [0, 65535] silently wrap. The contract
// addresses cells the same way, so the wrap is kept as-is rather than
// rejected here.
func FromXY(x, y int) Coord {
	return Coord(uint32(x)&0xFFFF | uint32(y)&0xFFFF<<16)
}

// ToXY unpacks a Coord back into its grid position. Inverse of FromXY
// for all x, y in [0, 65535].
func ToXY(c Coord) (x, y int) {
	return int(c & 0xFFFF), int(c >> 16)
}

// X returns the column component.
func (c Coord) X() int { return int(c & 0xFFFF) }

// Y returns the row component.
func (c Coord) Y() int { return int(c >> 16) }

func (c Coord) String() string {
	return fmt.Sprintf("%d:%d", c.X(), c.Y())
}

// Parse normalizes the representations a coordinate arrives in from the
// chain and from stored documents: native integers, decimal strings,
// 0x-prefixed hex strings and big integers.
func Parse(v interface{}) (Coord, error) {
	switch t := v.(type) {
	case Coord:
		return t, nil
	case int:
		return Coord(uint32(t)), nil
	case int64:
		return Coord(uint32(t)), nil
	case uint64:
		return Coord(uint32(t)), nil
	case uint32:
		return Coord(t), nil
	case float64:
		// json.Unmarshal delivers numbers as float64
		return Coord(uint32(int64(t))), nil
	case *big.Int:
		if t == nil {
			return 0, fmt.Errorf("parse coord: nil big.Int")
		}
		return Coord(uint32(t.Uint64())), nil
	case big.Int:
		return Coord(uint32(t.Uint64())), nil
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			n, err := strconv.ParseUint(s[2:], 16, 64)
			if err != nil {
				return 0, fmt.Errorf("parse coord %q: %w", t, err)
			}
			return Coord(uint32(n)), nil
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse coord %q: %w", t, err)
		}
		return Coord(uint32(n)), nil
	default:
		return 0, fmt.Errorf("parse coord: unsupported type %T", v)
	}
}
