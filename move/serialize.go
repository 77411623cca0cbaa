package move

import (
	"encoding/binary"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"

	"github.com/polytools/rlfm/alphabet"
	"github.com/polytools/rlfm/internal/codec"
)

// Sentinel errors from the §7 taxonomy for the .mvi load/save path.
var (
	ErrCorruptFile = errors.New("move: corrupt .mvi file")
	ErrIoError     = errors.New("move: I/O error")
)

const headerSize = 96

var magicV1 = [4]byte{'M', 'V', 'I', 1}
var magicV2 = [4]byte{'M', 'V', 'I', 2}

const v1RowSize = 48

// maxV2Len is the largest run length v2's 16-bit length field can
// represent; Save falls back to v1 whenever any run exceeds it,
// matching rb3_move_save's fallback in the original C source.
const maxV2Len = 0xFFFF

// Save writes the move table to path in the .mvi format, choosing v2
// (compact struct-of-arrays) unless some run's length exceeds 65535,
// in which case it falls back to the v1 row-major layout that can
// represent arbitrary lengths.
func (t *Table) Save(path string) error {
	useV1 := false
	for _, l := range t.ln {
		if uint32(l) > maxV2Len {
			useV1 = true
			break
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(ErrIoError, err.Error())
	}
	defer f.Close()

	var body []byte
	var magic [4]byte
	var rowSize int32
	if useV1 {
		magic = magicV1
		rowSize = v1RowSize
		body = t.encodeV1Body()
	} else {
		magic = magicV2
		rowSize = 0
		body = t.encodeV2Body()
	}

	header := make([]byte, headerSize)
	copy(header[0:4], magic[:])
	binary.LittleEndian.PutUint32(header[4:8], 0) // flags, reserved
	binary.LittleEndian.PutUint64(header[8:16], uint64(len(t.p)))
	binary.LittleEndian.PutUint64(header[16:24], uint64(t.n))
	for i := 0; i < alphabet.Size+1; i++ {
		binary.LittleEndian.PutUint64(header[24+8*i:32+8*i], uint64(t.acc[i]))
	}
	binary.LittleEndian.PutUint32(header[80:84], uint32(t.splitDepth))
	binary.LittleEndian.PutUint32(header[84:88], uint32(rowSize))
	checksum := codec.Checksum(body)
	binary.LittleEndian.PutUint64(header[88:96], checksum)

	if _, err := f.Write(header); err != nil {
		return errors.Wrap(ErrIoError, err.Error())
	}
	if _, err := f.Write(body); err != nil {
		return errors.Wrap(ErrIoError, err.Error())
	}
	return nil
}

func (t *Table) encodeV1Body() []byte {
	r := len(t.p)
	body := make([]byte, r*v1RowSize)
	for i := 0; i < r; i++ {
		row := body[i*v1RowSize : (i+1)*v1RowSize]
		binary.LittleEndian.PutUint64(row[0:8], uint64(t.p[i]))
		binary.LittleEndian.PutUint64(row[8:16], uint64(t.pi[i]))
		binary.LittleEndian.PutUint32(row[16:20], uint32(t.xi[i]))
		binary.LittleEndian.PutUint32(row[20:24], uint32(t.ln[i]))
		for c := 0; c < alphabet.Size; c++ {
			binary.LittleEndian.PutUint16(row[24+2*c:26+2*c], uint16(t.dist[i][c]))
		}
		row[36] = t.c[i]
		// row[37:48] left zero as padding
	}
	return body
}

func (t *Table) encodeV2Body() []byte {
	r := len(t.p)
	var body []byte

	xiBuf := make([]byte, r*4)
	for i, v := range t.xi {
		binary.LittleEndian.PutUint32(xiBuf[i*4:i*4+4], uint32(v))
	}
	body = append(body, xiBuf...)

	lenBuf := make([]byte, r*2)
	for i, v := range t.ln {
		binary.LittleEndian.PutUint16(lenBuf[i*2:i*2+2], uint16(v))
	}
	body = append(body, lenBuf...)

	cBuf := make([]byte, r)
	for i, v := range t.c {
		cBuf[i] = v
	}
	body = append(body, cBuf...)

	distBuf := make([]byte, r*alphabet.Size*2)
	k := 0
	for i := 0; i < r; i++ {
		for c := 0; c < alphabet.Size; c++ {
			binary.LittleEndian.PutUint16(distBuf[k:k+2], uint16(t.dist[i][c]))
			k += 2
		}
	}
	body = append(body, distBuf...)

	return body
}

// Load reads a .mvi file built by Save. The file is memory-mapped only
// while it is decoded: the arrays are copied into ordinary Go slices
// and the mapping is released before Load returns, so the returned
// Table holds no mapped memory and needs no Close.
func Load(path string) (*Table, error) {
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

	var magic [4]byte
	copy(magic[:], header[0:4])
	isV1 := magic == magicV1
	isV2 := magic == magicV2
	if !isV1 && !isV2 {
		return nil, ErrCorruptFile
	}

	nRuns := int64(binary.LittleEndian.Uint64(header[8:16]))
	n := int64(binary.LittleEndian.Uint64(header[16:24]))
	var acc alphabet.Acc
	for i := 0; i < alphabet.Size+1; i++ {
		acc[i] = int64(binary.LittleEndian.Uint64(header[24+8*i : 32+8*i]))
	}
	splitDepth := int(int32(binary.LittleEndian.Uint32(header[80:84])))
	rowSize := int32(binary.LittleEndian.Uint32(header[84:88]))
	wantChecksum := binary.LittleEndian.Uint64(header[88:96])

	body := region[headerSize:]
	if codec.Checksum(body) != wantChecksum {
		return nil, ErrCorruptFile
	}

	t := &Table{acc: acc, n: n, splitDepth: splitDepth}

	if isV1 {
		if rowSize != v1RowSize || int64(len(body)) != nRuns*v1RowSize {
			return nil, ErrCorruptFile
		}
		if err := t.decodeV1Body(body, int(nRuns)); err != nil {
			return nil, err
		}
	} else {
		if err := t.decodeV2Body(body, int(nRuns)); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Table) decodeV1Body(body []byte, r int) error {
	if len(body) < r*v1RowSize {
		return ErrCorruptFile
	}
	t.p = make([]int64, r)
	t.pi = make([]int64, r)
	t.xi = make([]int32, r)
	t.ln = make([]int32, r)
	t.c = make([]uint8, r)
	t.dist = make([][alphabet.Size]int16, r)
	for i := 0; i < r; i++ {
		row := body[i*v1RowSize : (i+1)*v1RowSize]
		t.p[i] = int64(binary.LittleEndian.Uint64(row[0:8]))
		t.pi[i] = int64(binary.LittleEndian.Uint64(row[8:16]))
		t.xi[i] = int32(binary.LittleEndian.Uint32(row[16:20]))
		t.ln[i] = int32(binary.LittleEndian.Uint32(row[20:24]))
		for c := 0; c < alphabet.Size; c++ {
			t.dist[i][c] = int16(binary.LittleEndian.Uint16(row[24+2*c : 26+2*c]))
		}
		t.c[i] = row[36]
	}
	return nil
}

func (t *Table) decodeV2Body(body []byte, r int) error {
	want := r*4 + r*2 + r + r*alphabet.Size*2
	if len(body) < want {
		return ErrCorruptFile
	}
	off := 0
	t.xi = make([]int32, r)
	for i := 0; i < r; i++ {
		t.xi[i] = int32(binary.LittleEndian.Uint32(body[off : off+4]))
		off += 4
	}
	t.ln = make([]int32, r)
	for i := 0; i < r; i++ {
		t.ln[i] = int32(binary.LittleEndian.Uint16(body[off : off+2]))
		off += 2
	}
	t.c = make([]uint8, r)
	for i := 0; i < r; i++ {
		t.c[i] = body[off]
		off++
	}
	t.dist = make([][alphabet.Size]int16, r)
	for i := 0; i < r; i++ {
		for c := 0; c < alphabet.Size; c++ {
			t.dist[i][c] = int16(binary.LittleEndian.Uint16(body[off : off+2]))
			off += 2
		}
	}

	// p[] and pi[] are reconstructed from prefix sums over len[]/c[],
	// replaying the same running-count bookkeeping Build uses.
	t.p = make([]int64, r)
	t.pi = make([]int64, r)
	var cnt [alphabet.Size]int64
	var pos int64
	for i := 0; i < r; i++ {
		t.p[i] = pos
		t.pi[i] = t.acc[t.c[i]] + cnt[t.c[i]]
		cnt[t.c[i]] += int64(t.ln[i])
		pos += int64(t.ln[i])
	}
	return nil
}
