package srindex

import (
	"encoding/binary"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"

	"github.com/polytools/rlfm/internal/codec"
	"github.com/polytools/rlfm/move"
)

// Sentinel errors from the §7 taxonomy for the .sri load/save path.
var (
	ErrCorruptFile = errors.New("srindex: corrupt .sri file")
	ErrIoError     = errors.New("srindex: I/O error")
)

const headerSize = 64

var magic = [4]byte{'S', 'R', 'I', 1}

// Save writes the SR-index to path in the .sri format: the sorted
// arrays (phi_sa, run_pos, sub_pos) go through internal/codec's
// delta-sampled encoding, the unsorted SA-valued arrays (phi_da,
// run_sa, sub_sa) through its bit-packed encoding, and the small
// multi-string tables (cum_len, text_order_sid) are stored raw, per
// §4.5. sub_pos/sub_sa are omitted when they alias run_pos/run_sa
// (stride <= 1): n_sub = 0 in the header signals the alias.
func (sr *SrIndex) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(ErrIoError, err.Error())
	}
	defer f.Close()

	width := codec.BitWidth(sr.n)
	aliased := sr.stride <= 1

	var body []byte
	body = appendDeltaSorted(body, codec.EncodeDeltaSorted(sr.phiSA))
	body = appendBitPacked(body, codec.EncodeBitPacked(sr.phiDA, width))
	body = appendDeltaSorted(body, codec.EncodeDeltaSorted(sr.runPos))
	body = appendBitPacked(body, codec.EncodeBitPacked(sr.runSA, width))
	numSub := 0
	if !aliased {
		numSub = len(sr.subPos)
		body = appendDeltaSorted(body, codec.EncodeDeltaSorted(sr.subPos))
		body = appendBitPacked(body, codec.EncodeBitPacked(sr.subSA, width))
	}
	body = appendRawI64s(body, sr.cumLen)
	body = appendRawI64s(body, sr.textOrderSid)

	header := make([]byte, headerSize)
	copy(header[0:4], magic[:])
	binary.LittleEndian.PutUint32(header[4:8], 0) // flags, reserved
	binary.LittleEndian.PutUint64(header[8:16], uint64(sr.stride))
	binary.LittleEndian.PutUint64(header[16:24], uint64(sr.numSeqs))
	binary.LittleEndian.PutUint64(header[24:32], uint64(sr.n))
	binary.LittleEndian.PutUint64(header[32:40], uint64(len(sr.runPos)))
	binary.LittleEndian.PutUint64(header[40:48], uint64(numSub))
	checksum := codec.Checksum(body)
	binary.LittleEndian.PutUint64(header[48:56], checksum)

	if _, err := f.Write(header); err != nil {
		return errors.Wrap(ErrIoError, err.Error())
	}
	if _, err := f.Write(body); err != nil {
		return errors.Wrap(ErrIoError, err.Error())
	}
	return nil
}

// Load reads a .sri file built by Save, rebuilding the in-memory
// tables over the move table mt (which must be the same one the
// SrIndex was originally built over: Save does not duplicate it).
func Load(path string, mt *move.Table) (*SrIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(ErrIoError, err.Error())
	}
	defer f.Close()

	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrap(ErrIoError, err.Error())
	}
	defer region.Unmap()

	if len(region) < headerSize {
		return nil, ErrCorruptFile
	}
	header := region[:headerSize]
	var gotMagic [4]byte
	copy(gotMagic[:], header[0:4])
	if gotMagic != magic {
		return nil, ErrCorruptFile
	}

	stride := int(binary.LittleEndian.Uint64(header[8:16]))
	numSeqs := int(binary.LittleEndian.Uint64(header[16:24]))
	n := int64(binary.LittleEndian.Uint64(header[24:32]))
	numRuns := int(binary.LittleEndian.Uint64(header[32:40]))
	numSub := int(binary.LittleEndian.Uint64(header[40:48]))
	wantChecksum := binary.LittleEndian.Uint64(header[48:56])

	body := region[headerSize:]
	if codec.Checksum(body) != wantChecksum {
		return nil, ErrCorruptFile
	}

	off := 0
	var phiSADS, runPosDS, subPosDS codec.DeltaSorted
	var phiDABP, runSABP, subSABP codec.BitPacked

	phiSADS, off = readDeltaSorted(body, off)
	phiDABP, off = readBitPacked(body, off)
	runPosDS, off = readDeltaSorted(body, off)
	runSABP, off = readBitPacked(body, off)
	if numSub > 0 {
		subPosDS, off = readDeltaSorted(body, off)
		subSABP, off = readBitPacked(body, off)
	}
	cumLen, off := readRawI64s(body, off)
	textOrderSid, _ := readRawI64s(body, off)

	if runPosDS.N != numRuns {
		return nil, ErrCorruptFile
	}

	sr := &SrIndex{table: mt, stride: stride, numSeqs: numSeqs, n: n}
	sr.phiSA = phiSADS.Decode()
	sr.phiDA = phiDABP.Decode()
	sr.runPos = runPosDS.Decode()
	sr.runSA = runSABP.Decode()
	if numSub > 0 {
		sr.subPos = subPosDS.Decode()
		sr.subSA = subSABP.Decode()
	} else {
		sr.subPos = sr.runPos
		sr.subSA = sr.runSA
	}
	sr.cumLen = cumLen
	sr.textOrderSid = textOrderSid

	sr.subBV = newBitset(n)
	for _, p := range sr.subPos {
		sr.subBV.set(p)
	}

	return sr, nil
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendU16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func readU64(body []byte, off int) uint64 { return binary.LittleEndian.Uint64(body[off : off+8]) }
func readU32(body []byte, off int) uint32 { return binary.LittleEndian.Uint32(body[off : off+4]) }
func readU16(body []byte, off int) uint16 { return binary.LittleEndian.Uint16(body[off : off+2]) }

func appendRawI64s(buf []byte, xs []int64) []byte {
	buf = appendU64(buf, uint64(len(xs)))
	for _, x := range xs {
		buf = appendU64(buf, uint64(x))
	}
	return buf
}

func readRawI64s(body []byte, off int) ([]int64, int) {
	n := int(readU64(body, off))
	off += 8
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		out[i] = int64(readU64(body, off))
		off += 8
	}
	return out, off
}

func appendDeltaSorted(buf []byte, d codec.DeltaSorted) []byte {
	buf = appendU64(buf, uint64(d.N))
	var wide byte
	if d.Wide {
		wide = 1
	}
	buf = append(buf, wide)
	buf = appendU64(buf, uint64(len(d.Samples)))
	for _, s := range d.Samples {
		buf = appendU64(buf, uint64(s))
	}
	for i := 0; i < d.N; i++ {
		if d.Wide {
			buf = appendU32(buf, uint32(d.Deltas[i]))
		} else {
			buf = appendU16(buf, uint16(d.Deltas[i]))
		}
	}
	return buf
}

func readDeltaSorted(body []byte, off int) (codec.DeltaSorted, int) {
	n := int(readU64(body, off))
	off += 8
	wide := body[off] == 1
	off++
	numSamples := int(readU64(body, off))
	off += 8
	samples := make([]int64, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = int64(readU64(body, off))
		off += 8
	}
	deltas := make([]int64, n)
	for i := 0; i < n; i++ {
		if wide {
			deltas[i] = int64(readU32(body, off))
			off += 4
		} else {
			deltas[i] = int64(readU16(body, off))
			off += 2
		}
	}
	return codec.DeltaSorted{N: n, Samples: samples, Deltas: deltas, Wide: wide}, off
}

func appendBitPacked(buf []byte, bp codec.BitPacked) []byte {
	buf = appendU64(buf, uint64(bp.N))
	buf = appendU64(buf, uint64(bp.Width))
	buf = appendU64(buf, uint64(len(bp.Bits)))
	buf = append(buf, bp.Bits...)
	return buf
}

func readBitPacked(body []byte, off int) (codec.BitPacked, int) {
	n := int(readU64(body, off))
	off += 8
	width := uint(readU64(body, off))
	off += 8
	nb := int(readU64(body, off))
	off += 8
	bits := make([]byte, nb)
	copy(bits, body[off:off+nb])
	off += nb
	return codec.BitPacked{N: n, Width: width, Bits: bits}, off
}
