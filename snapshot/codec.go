package snapshot

import (
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/Reaganak40/chessai/game"
	"github.com/Reaganak40/chessai/searcher"
	"github.com/klauspost/compress/zstd"
	"github.com/samber/lo"
	"google.golang.org/protobuf/encoding/protowire"
)

var ErrTypeMismatch = errors.New("snapshot does not match the expected tree structure")

// Body fields
const (
	fieldRootHash protowire.Number = 1 // fixed64, Hash of the root position
	fieldNode     protowire.Number = 2 // bytes, one node record, pre-order
)

// Node record fields
const (
	nodeParent    protowire.Number = 1 // index of the parent record
	nodeFrom      protowire.Number = 2
	nodeTo        protowire.Number = 3
	nodeWhiteWins protowire.Number = 4
	nodeBlackWins protowire.Number = 5
	nodeDraws     protowire.Number = 6
	nodeIsRoot    protowire.Number = 7
	nodePosition  protowire.Number = 8 // root only
)

// positionSize is the fixed part of an encoded position, followed by the progress varint.
// [Board:64][Turn:1][WhiteCastle:1][BlackCastle:1][Status:1][HasLastMove:1][From:1][To:1]
const positionSize = game.NumSquares + 7

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

type nodeRecord struct {
	parent   int
	move     game.Move
	stats    searcher.Stats
	isRoot   bool
	position []byte
}

func mismatch(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrTypeMismatch)...)
}

// Encode serializes root, every attached descendant and their statistics.
func Encode(root *searcher.Node) []byte {
	body := protowire.AppendTag(nil, fieldRootHash, protowire.Fixed64Type)
	body = protowire.AppendFixed64(body, root.Position().Hash())

	index := make(map[*searcher.Node]int)
	root.Walkthrough(func(n *searcher.Node) {
		index[n] = len(index)
		body = protowire.AppendTag(body, fieldNode, protowire.BytesType)
		body = protowire.AppendBytes(body, encodeNode(n, n == root, index))
	})

	compressed := encoder.EncodeAll(body, nil)
	h := Header{
		Version:  Version,
		Length:   uint32(len(compressed)),
		Checksum: crc32.ChecksumIEEE(compressed),
	}
	copy(h.Magic[:], Magic)
	return append(encodeHeader(h), compressed...)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func encodeNode(n *searcher.Node, isRoot bool, index map[*searcher.Node]int) []byte {
	var b []byte
	if isRoot {
		b = appendVarint(b, nodeIsRoot, protowire.EncodeBool(true))
		b = protowire.AppendTag(b, nodePosition, protowire.BytesType)
		b = protowire.AppendBytes(b, encodePosition(n.Position().Record()))
	} else {
		move, _ := n.Move()
		b = appendVarint(b, nodeParent, uint64(index[n.Parent()]))
		b = appendVarint(b, nodeFrom, uint64(move.From))
		b = appendVarint(b, nodeTo, uint64(move.To))
	}
	s := n.Stats()
	b = appendVarint(b, nodeWhiteWins, uint64(s.WhiteWins))
	b = appendVarint(b, nodeBlackWins, uint64(s.BlackWins))
	b = appendVarint(b, nodeDraws, uint64(s.Draws))
	return b
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func encodePosition(r game.Record) []byte {
	buf := make([]byte, 0, positionSize+2)
	for _, piece := range r.Board {
		buf = append(buf, byte(piece))
	}
	var last game.Move
	if r.HasLastMove {
		last = r.LastMove
	}
	buf = append(buf,
		byte(r.Turn),
		boolByte(r.Castling[game.White]),
		boolByte(r.Castling[game.Black]),
		byte(r.Status),
		boolByte(r.HasLastMove),
		byte(last.From),
		byte(last.To),
	)
	return protowire.AppendVarint(buf, uint64(r.Progress))
}

// Decode restores a tree written by Encode. The header, checksum and every record are validated
// before the first node is built; children are then rebuilt by replaying their moves, which
// must be legal. Any mismatch fails with ErrTypeMismatch.
func Decode(data []byte) (*searcher.Node, error) {
	h, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}
	body := data[HeaderSize:]
	if int(h.Length) != len(body) {
		return nil, mismatch("body length %d, header says %d", len(body), h.Length)
	}
	if sum := crc32.ChecksumIEEE(body); sum != h.Checksum {
		return nil, mismatch("checksum %#08x, header says %#08x", sum, h.Checksum)
	}
	raw, err := decoder.DecodeAll(body, nil)
	if err != nil {
		return nil, mismatch("failed to decompress body (%v)", err)
	}

	rootHash, records, err := parseBody(raw)
	if err != nil {
		return nil, err
	}
	rootRecord, err := decodePosition(records[0].position)
	if err != nil {
		return nil, err
	}
	return build(rootHash, rootRecord, records)
}

func parseBody(b []byte) (uint64, []nodeRecord, error) {
	var (
		rootHash uint64
		hasHash  bool
		records  []nodeRecord
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, nil, mismatch("body tag (%v)", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldRootHash && typ == protowire.Fixed64Type && !hasHash:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return 0, nil, mismatch("root hash (%v)", protowire.ParseError(n))
			}
			rootHash, hasHash = v, true
			b = b[n:]
		case num == fieldNode && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, nil, mismatch("node %d (%v)", len(records), protowire.ParseError(n))
			}
			rec, err := parseNode(v, len(records))
			if err != nil {
				return 0, nil, err
			}
			records = append(records, rec)
			b = b[n:]
		default:
			return 0, nil, mismatch("unexpected body field %d of type %d", num, typ)
		}
	}

	if !hasHash {
		return 0, nil, mismatch("missing root hash")
	}
	if len(records) == 0 {
		return 0, nil, mismatch("no nodes")
	}
	return rootHash, records, nil
}

func parseNode(b []byte, i int) (nodeRecord, error) {
	var rec nodeRecord
	seen := make(map[protowire.Number]bool)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return rec, mismatch("node %d tag (%v)", i, protowire.ParseError(n))
		}
		b = b[n:]
		if seen[num] {
			return rec, mismatch("node %d repeats field %d", i, num)
		}
		seen[num] = true

		if num == nodePosition {
			if typ != protowire.BytesType {
				return rec, mismatch("node %d position has type %d", i, typ)
			}
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return rec, mismatch("node %d position (%v)", i, protowire.ParseError(n))
			}
			rec.position = v
			b = b[n:]
			continue
		}

		if typ != protowire.VarintType {
			return rec, mismatch("node %d field %d has type %d", i, num, typ)
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return rec, mismatch("node %d field %d (%v)", i, num, protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case nodeParent:
			if v >= uint64(i) {
				return rec, mismatch("node %d has parent %d", i, v)
			}
			rec.parent = int(v)
		case nodeFrom, nodeTo:
			if v >= game.NumSquares {
				return rec, mismatch("node %d has square %d", i, v)
			}
			if num == nodeFrom {
				rec.move.From = game.Square(v)
			} else {
				rec.move.To = game.Square(v)
			}
		case nodeWhiteWins:
			rec.stats.WhiteWins = int(v)
		case nodeBlackWins:
			rec.stats.BlackWins = int(v)
		case nodeDraws:
			rec.stats.Draws = int(v)
		case nodeIsRoot:
			rec.isRoot = protowire.DecodeBool(v)
		default:
			return rec, mismatch("node %d has unknown field %d", i, num)
		}
	}

	if i == 0 {
		if !rec.isRoot || !seen[nodePosition] {
			return rec, mismatch("first node is not a root")
		}
		return rec, nil
	}
	if rec.isRoot || seen[nodePosition] {
		return rec, mismatch("node %d claims to be a root", i)
	}
	if !seen[nodeParent] || !seen[nodeFrom] || !seen[nodeTo] {
		return rec, mismatch("node %d is missing its move", i)
	}
	return rec, nil
}

func decodePosition(b []byte) (game.Record, error) {
	var r game.Record
	if len(b) <= positionSize {
		return r, mismatch("root position has %d bytes", len(b))
	}
	for i := range r.Board {
		if b[i] > byte(game.BlackPawn) {
			return r, mismatch("root position has piece %d on %v", b[i], game.Square(i))
		}
		r.Board[i] = game.Piece(b[i])
	}
	tail := b[game.NumSquares:positionSize]
	for i, v := range tail {
		limit := byte(1)
		switch i {
		case 3:
			limit = byte(game.Stalemate)
		case 5, 6:
			limit = game.NumSquares - 1
		}
		if v > limit {
			return r, mismatch("root position field %d is %d", i, v)
		}
	}
	r.Turn = game.Color(tail[0])
	r.Castling = [2]bool{tail[1] == 1, tail[2] == 1}
	r.Status = game.Status(tail[3])
	r.HasLastMove = tail[4] == 1
	if r.HasLastMove {
		r.LastMove = game.Move{From: game.Square(tail[5]), To: game.Square(tail[6])}
	}

	progress, n := protowire.ConsumeVarint(b[positionSize:])
	if n < 0 || positionSize+n != len(b) {
		return r, mismatch("root position progress")
	}
	r.Progress = int(progress)
	return r, nil
}

func build(rootHash uint64, rootRecord game.Record, records []nodeRecord) (*searcher.Node, error) {
	position := game.FromRecord(rootRecord)
	if hash := position.Hash(); hash != rootHash {
		return nil, mismatch("root hash %d, stored %d", hash, rootHash)
	}
	root := searcher.NewRoot(position)
	root.SetStats(records[0].stats)

	nodes := make([]*searcher.Node, 1, len(records))
	nodes[0] = root
	for i, rec := range records[1:] {
		parent := nodes[rec.parent]
		moves, err := parent.Position().LegalMoves()
		if err != nil {
			return nil, mismatch("node %d parent position (%v)", i+1, err)
		}
		if !lo.Contains(moves, rec.move) {
			return nil, mismatch("node %d move %v is not legal", i+1, rec.move)
		}
		child, err := parent.CreateChild(rec.move)
		if err != nil {
			return nil, mismatch("node %d (%v)", i+1, err)
		}
		child.SetStats(rec.stats)
		nodes = append(nodes, child)
	}
	return root, nil
}
