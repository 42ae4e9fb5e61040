package avro

// Zig-zag varint encoding for Avro's int/long primitives: a signed n is
// mapped to an unsigned value via (n << 1) ^ (n >> 63), then emitted as a
// base-128 varint with the high bit of each byte marking continuation.

const maxVarintBytes = 10 // ceil(64/7); a corrupt stream can't legally exceed this for a 64-bit value.

func zigzagEncode(n int64) uint64 {
	return uint64(n<<1) ^ uint64(n>>63)
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// appendUvarint appends u as a base-128 varint to dst and returns the
// extended slice.
func appendUvarint(dst []byte, u uint64) []byte {
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// appendLong appends n, zig-zag encoded, as a varint to dst.
func appendLong(dst []byte, n int64) []byte {
	return appendUvarint(dst, zigzagEncode(n))
}

// getUvarint reads a base-128 varint from data starting at offset,
// returning the decoded value and the number of bytes consumed, or an
// error if the varint is truncated or exceeds the 10-byte bound a valid
// 64-bit zig-zag value can occupy.
func getUvarint(data []byte, offset int) (uint64, int, error) {
	var u uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= maxVarintBytes {
			return 0, 0, decodeErr(offset, "varint exceeds %d bytes", maxVarintBytes)
		}
		pos := offset + i
		if pos >= len(data) {
			return 0, 0, decodeErr(offset, "truncated varint")
		}
		b := data[pos]
		u |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return u, i + 1, nil
		}
		shift += 7
	}
}

// getLong reads a zig-zag varint-encoded long from data at offset.
func getLong(data []byte, offset int) (int64, int, error) {
	u, n, err := getUvarint(data, offset)
	if err != nil {
		return 0, 0, err
	}
	return zigzagDecode(u), n, nil
}
