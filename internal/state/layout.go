package state

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/solongwallet/lottery/internal/progerr"
)

// cursor is a bounds-checked little-endian reader/writer over a byte slice.
// The first out-of-range access records an error and turns every later
// access into a no-op, so callers check err once at the end.
type cursor struct {
	buf []byte
	off int
	err error
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.off+n > len(c.buf) {
		c.err = progerr.New(progerr.CodeInvalidAccountLength,
			"need %d bytes at offset %d, buffer is %d bytes", n, c.off, len(c.buf))
		return nil
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b
}

func (c *cursor) u8() uint8 {
	if b := c.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (c *cursor) u16() uint16 {
	if b := c.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (c *cursor) u64() uint64 {
	if b := c.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (c *cursor) i64() int64 {
	return int64(c.u64())
}

func (c *cursor) bool() bool {
	return c.u8() != 0
}

func (c *cursor) key() solana.PublicKey {
	var k solana.PublicKey
	if b := c.take(32); b != nil {
		copy(k[:], b)
	}
	return k
}

func (c *cursor) putU8(v uint8) {
	if b := c.take(1); b != nil {
		b[0] = v
	}
}

func (c *cursor) putU16(v uint16) {
	if b := c.take(2); b != nil {
		binary.LittleEndian.PutUint16(b, v)
	}
}

func (c *cursor) putU64(v uint64) {
	if b := c.take(8); b != nil {
		binary.LittleEndian.PutUint64(b, v)
	}
}

func (c *cursor) putI64(v int64) {
	c.putU64(uint64(v))
}

func (c *cursor) putBool(v bool) {
	if v {
		c.putU8(1)
		return
	}
	c.putU8(0)
}

func (c *cursor) putKey(k solana.PublicKey) {
	if b := c.take(32); b != nil {
		copy(b, k[:])
	}
}

// zeroRest clears every byte from the current offset to the end.
func (c *cursor) zeroRest() {
	if c.err != nil {
		return
	}
	clear(c.buf[c.off:])
	c.off = len(c.buf)
}
