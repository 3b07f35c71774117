package snapshot

import (
	"encoding/binary"
	"fmt"
)

const (
	Magic      = "CMTS"   // Chess MCTS tree
	Version    = uint8(1) // Format version 1
	HeaderSize = 14       // Magic(4) + Version(1) + Flags(1) + Length(4) + Checksum(4)
)

// Header precedes the compressed body of a snapshot.
// 14 bytes: [Magic:4][Version:1][Flags:1][Length:4][Checksum:4]
type Header struct {
	Magic    [4]byte
	Version  uint8
	Flags    uint8 // reserved, always 0
	Length   uint32
	Checksum uint32 // CRC-32 (IEEE) of the compressed body
}

func encodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], h.Magic[:])
	buf[4] = h.Version
	buf[5] = h.Flags
	binary.BigEndian.PutUint32(buf[6:10], h.Length)
	binary.BigEndian.PutUint32(buf[10:14], h.Checksum)
	return buf
}

func decodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("header too short: %d bytes: %w", len(data), ErrTypeMismatch)
	}
	var h Header
	copy(h.Magic[:], data[0:4])
	h.Version = data[4]
	h.Flags = data[5]
	h.Length = binary.BigEndian.Uint32(data[6:10])
	h.Checksum = binary.BigEndian.Uint32(data[10:14])

	switch {
	case string(h.Magic[:]) != Magic:
		return h, fmt.Errorf("bad magic %q: %w", h.Magic[:], ErrTypeMismatch)
	case h.Version != Version:
		return h, fmt.Errorf("unsupported version %d: %w", h.Version, ErrTypeMismatch)
	case h.Flags != 0:
		return h, fmt.Errorf("unknown flags %#x: %w", h.Flags, ErrTypeMismatch)
	}
	return h, nil
}
