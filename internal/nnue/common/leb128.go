// Signed LEB128 codec for the compressed weight arrays.
// See https://en.wikipedia.org/wiki/LEB128 for the encoding scheme.

package common

import (
	"fmt"
	"io"
)

// Leb128Magic precedes every compressed array in the weight file.
const Leb128Magic = "COMPRESSED_LEB128"

// bitWidth reports the width in bits of the element type.
func bitWidth[T int16 | int32]() uint {
	var zero T
	switch any(zero).(type) {
	case int16:
		return 16
	default:
		return 32
	}
}

// ReadLEB128 reads len(out) signed integers compressed with signed LEB128.
func ReadLEB128[T int16 | int32](r io.Reader, out []T) error {
	magic := make([]byte, len(Leb128Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return fmt.Errorf("failed to read LEB128 magic: %w", err)
	}
	if string(magic) != Leb128Magic {
		return fmt.Errorf("invalid LEB128 magic: expected %q, got %q", Leb128Magic, string(magic))
	}

	bytesLeft, err := ReadLittleEndian[uint32](r)
	if err != nil {
		return fmt.Errorf("failed to read LEB128 byte count: %w", err)
	}

	const bufSize = 4096
	buf := make([]byte, bufSize)
	bufPos := uint32(bufSize) // empty, triggers the first read
	width := bitWidth[T]()

	for i := range out {
		var result T
		var shift uint

		for {
			if bufPos == bufSize {
				toRead := min(bytesLeft, bufSize)
				if _, err := io.ReadFull(r, buf[:toRead]); err != nil {
					return fmt.Errorf("failed to read LEB128 data: %w", err)
				}
				bufPos = 0
			}

			b := buf[bufPos]
			bufPos++
			bytesLeft--

			result |= T(b&0x7f) << shift
			shift += 7

			if b&0x80 == 0 {
				if shift < width && (b&0x40) != 0 {
					result |= ^T(0) << shift
				}
				break
			}

			if shift >= width {
				break
			}
		}

		out[i] = result
	}

	if bytesLeft != 0 {
		return fmt.Errorf("LEB128 bytes remaining: %d", bytesLeft)
	}

	return nil
}

// WriteLEB128 writes signed integers with signed LEB128 compression.
func WriteLEB128[T int16 | int32](w io.Writer, values []T) error {
	if _, err := w.Write([]byte(Leb128Magic)); err != nil {
		return fmt.Errorf("failed to write LEB128 magic: %w", err)
	}

	// First pass counts the encoded bytes for the length prefix.
	var byteCount uint32
	for _, value := range values {
		v := value
		for {
			b := byte(v & 0x7f)
			v >>= 7
			byteCount++
			if (b&0x40 == 0 && v == 0) || (b&0x40 != 0 && v == -1) {
				break
			}
		}
	}

	if err := WriteLittleEndian(w, byteCount); err != nil {
		return fmt.Errorf("failed to write LEB128 byte count: %w", err)
	}

	const bufSize = 4096
	buf := make([]byte, 0, bufSize)

	flush := func() error {
		if len(buf) > 0 {
			if _, err := w.Write(buf); err != nil {
				return err
			}
			buf = buf[:0]
		}
		return nil
	}

	for _, value := range values {
		v := value
		for {
			b := byte(v & 0x7f)
			v >>= 7
			if (b&0x40 == 0 && v == 0) || (b&0x40 != 0 && v == -1) {
				buf = append(buf, b)
				if len(buf) == bufSize {
					if err := flush(); err != nil {
						return err
					}
				}
				break
			}
			buf = append(buf, b|0x80)
			if len(buf) == bufSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}

	return flush()
}
