package cidr

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"net/netip"
)

// Block is an IPv4 network: a 32-bit address and a prefix length.
// The address is always the network address for Bits.
type Block struct {
	Addr uint32
	Bits uint8
}

// Size returns the number of addresses covered by the block.
func (b Block) Size() uint64 {
	return uint64(1) << (32 - uint(b.Bits))
}

// Last returns the highest address covered by the block.
func (b Block) Last() uint32 {
	return uint32(uint64(b.Addr) + b.Size() - 1)
}

// Valid reports whether the prefix length is in range and the address is aligned to it.
func (b Block) Valid() bool {
	return b.Bits <= 32 && uint64(b.Addr)%b.Size() == 0
}

// Prefix converts the block to a netip.Prefix.
func (b Block) Prefix() netip.Prefix {
	return netip.PrefixFrom(AddrFromUint32(b.Addr), int(b.Bits))
}

// String renders the block in a.b.c.d/n notation.
func (b Block) String() string {
	return fmt.Sprintf("%s/%d", AddrFromUint32(b.Addr), b.Bits)
}

// AddrToUint32 converts an IPv4 address to its big-endian integer form.
func AddrToUint32(addr netip.Addr) uint32 {
	a4 := addr.As4()
	return binary.BigEndian.Uint32(a4[:])
}

// AddrFromUint32 converts a big-endian integer to an IPv4 address.
func AddrFromUint32(v uint32) netip.Addr {
	var a4 [4]byte
	binary.BigEndian.PutUint32(a4[:], v)
	return netip.AddrFrom4(a4)
}

// RangeToBlocks covers the inclusive range [start, end] with aligned power-of-two blocks,
// in ascending order. Each step emits the largest block that starts at the cursor, is
// aligned to it and does not run past end. An empty slice is returned when start > end.
//
// The loop stops once a block reaches the top of the 32-bit space; working arithmetic is
// 64-bit, so that block is always emitted before stopping and the range stays fully covered.
func RangeToBlocks(start, end uint32) []Block {
	if start > end {
		return nil
	}

	var blocks []Block
	cursor, last := uint64(start), uint64(end)

	for cursor <= last {
		alignment := 32
		if cursor != 0 {
			alignment = bits.TrailingZeros32(uint32(cursor))
		}
		remaining := last - cursor + 1

		byAlignment := 32 - alignment
		bySize := 32 - (bits.Len64(remaining) - 1)
		prefixLen := max(byAlignment, bySize)

		blocks = append(blocks, Block{Addr: uint32(cursor), Bits: uint8(prefixLen)})

		blockSize := uint64(1) << (32 - prefixLen)
		if blockSize >= math.MaxUint32 {
			break
		}
		next := cursor + blockSize
		if next > math.MaxUint32 {
			break
		}
		cursor = next
	}

	return blocks
}
