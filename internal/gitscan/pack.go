package gitscan

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// packIndex maps object hashes to byte offsets within one .pack file.
type packIndex struct {
	path       string
	packPath   string
	version    uint32
	numObjects uint32
	fanout     [256]uint32
	offsets    map[Hash]int64
}

func (idx *packIndex) find(id Hash) (int64, bool) {
	offset, ok := idx.offsets[id]
	return offset, ok
}

// loadPackIndices scans objects/pack for every .idx file and loads it.
func (r *Repository) loadPackIndices() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	packDir := filepath.Join(r.gitDir, "objects", "pack")
	entries, err := os.ReadDir(packDir)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("reading pack directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".idx") {
			continue
		}
		idxPath := filepath.Join(packDir, entry.Name())
		idx, err := loadPackIndex(idxPath)
		if err != nil {
			log.Printf("gitscan: skipping unreadable pack index %s: %v", entry.Name(), err)
			continue
		}
		r.packIndices = append(r.packIndices, idx)
	}
	return nil
}

func loadPackIndex(idxPath string) (*packIndex, error) {
	file, err := os.Open(idxPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var magic [4]byte
	if _, err := io.ReadFull(file, magic[:]); err != nil {
		return nil, fmt.Errorf("reading index magic: %w", err)
	}

	if magic == [4]byte{0xFF, 0x74, 0x4F, 0x63} {
		return parsePackIndexV2(file, idxPath)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return parsePackIndexV1(file, idxPath)
}

func parsePackIndexV2(file *os.File, idxPath string) (*packIndex, error) {
	idx := &packIndex{
		path:     idxPath,
		packPath: strings.TrimSuffix(idxPath, ".idx") + ".pack",
		version:  2,
		offsets:  make(map[Hash]int64),
	}

	var version uint32
	if err := binary.Read(file, binary.BigEndian, &version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != 2 {
		return nil, fmt.Errorf("expected pack index version 2, got %d", version)
	}

	for i := range idx.fanout {
		if err := binary.Read(file, binary.BigEndian, &idx.fanout[i]); err != nil {
			return nil, fmt.Errorf("reading fanout[%d]: %w", i, err)
		}
	}
	idx.numObjects = idx.fanout[255]

	names := make([][20]byte, idx.numObjects)
	for i := range names {
		if _, err := io.ReadFull(file, names[i][:]); err != nil {
			return nil, fmt.Errorf("reading object name %d: %w", i, err)
		}
	}

	if _, err := file.Seek(int64(idx.numObjects)*4, io.SeekCurrent); err != nil {
		return nil, fmt.Errorf("skipping CRCs: %w", err)
	}

	offsets32 := make([]uint32, idx.numObjects)
	for i := range offsets32 {
		if err := binary.Read(file, binary.BigEndian, &offsets32[i]); err != nil {
			return nil, fmt.Errorf("reading offset %d: %w", i, err)
		}
	}

	var largeOffsets []uint64
	for _, off := range offsets32 {
		if off&0x80000000 == 0 {
			continue
		}
		if largeOffsets != nil {
			continue
		}
		for {
			var large uint64
			err := binary.Read(file, binary.BigEndian, &large)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("reading large offset table: %w", err)
			}
			largeOffsets = append(largeOffsets, large)
		}
	}

	for i := range names {
		hash := NewHashFromBytes(names[i])
		off := offsets32[i]
		if off&0x80000000 != 0 {
			idx32 := off & 0x7fffffff
			if int(idx32) >= len(largeOffsets) {
				continue
			}
			idx.offsets[hash] = int64(largeOffsets[idx32])
		} else {
			idx.offsets[hash] = int64(off)
		}
	}

	return idx, nil
}

func parsePackIndexV1(file *os.File, idxPath string) (*packIndex, error) {
	idx := &packIndex{
		path:     idxPath,
		packPath: strings.TrimSuffix(idxPath, ".idx") + ".pack",
		version:  1,
		offsets:  make(map[Hash]int64),
	}

	for i := range idx.fanout {
		if err := binary.Read(file, binary.BigEndian, &idx.fanout[i]); err != nil {
			return nil, fmt.Errorf("reading fanout[%d]: %w", i, err)
		}
	}
	idx.numObjects = idx.fanout[255]

	for i := uint32(0); i < idx.numObjects; i++ {
		var offset uint32
		if err := binary.Read(file, binary.BigEndian, &offset); err != nil {
			return nil, fmt.Errorf("reading offset %d: %w", i, err)
		}
		var name [20]byte
		if _, err := io.ReadFull(file, name[:]); err != nil {
			return nil, fmt.Errorf("reading object name %d: %w", i, err)
		}
		idx.offsets[NewHashFromBytes(name)] = int64(offset)
	}

	return idx, nil
}

// readPackedObject finds hash in one of the loaded pack indices and
// decodes it, resolving any delta chain.
func (r *Repository) readPackedObject(hash Hash) ([]byte, ObjectType, error) {
	r.mu.RLock()
	indices := r.packIndices
	r.mu.RUnlock()

	for _, idx := range indices {
		offset, ok := idx.find(hash)
		if !ok {
			continue
		}
		file, err := os.Open(idx.packPath)
		if err != nil {
			return nil, ObjNone, fmt.Errorf("opening pack %s: %w", idx.packPath, err)
		}
		defer file.Close()

		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			return nil, ObjNone, err
		}
		data, typ, err := r.readPackObjectAt(file, idx)
		if err != nil {
			return nil, ObjNone, err
		}
		return data, typ, nil
	}
	return nil, ObjNone, fmt.Errorf("object %s not found in any pack", hash.Short())
}

func (r *Repository) readPackObjectAt(file *os.File, idx *packIndex) ([]byte, ObjectType, error) {
	start, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, ObjNone, err
	}
	rawType, size, err := readPackObjectHeader(file)
	if err != nil {
		return nil, ObjNone, err
	}

	switch rawType {
	case 1, 2, 3, 4:
		data, err := readCompressedObject(file, size)
		return data, ObjectType(rawType), err
	case 6:
		return r.readOfsDelta(file, idx, start, size)
	case 7:
		return r.readRefDelta(file, idx, size)
	default:
		return nil, ObjNone, fmt.Errorf("unsupported pack object type: %d", rawType)
	}
}

func readPackObjectHeader(file *os.File) (objType byte, size int64, err error) {
	var b [1]byte
	if _, err := file.Read(b[:]); err != nil {
		return 0, 0, err
	}

	objType = (b[0] >> 4) & 0x07
	size = int64(b[0] & 0x0F)
	shift := uint(4)

	for b[0]&0x80 != 0 {
		if _, err := file.Read(b[:]); err != nil {
			return 0, 0, err
		}
		size |= int64(b[0]&0x7F) << shift
		shift += 7
	}
	return objType, size, nil
}

func readCompressedObject(file *os.File, expectedSize int64) ([]byte, error) {
	zr, err := zlib.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("opening delta zlib stream: %w", err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil {
		return nil, fmt.Errorf("decompressing pack entry: %w", err)
	}
	if int64(buf.Len()) != expectedSize {
		return nil, fmt.Errorf("size mismatch: expected %d, got %d", expectedSize, buf.Len())
	}
	return buf.Bytes(), nil
}

// readOfsDelta resolves an ofs-delta entry whose header starts at start;
// the encoded offset is relative to that header position.
func (r *Repository) readOfsDelta(file *os.File, idx *packIndex, start, size int64) ([]byte, ObjectType, error) {
	var b [1]byte
	if _, err := file.Read(b[:]); err != nil {
		return nil, ObjNone, err
	}
	offset := int64(b[0] & 0x7F)
	for b[0]&0x80 != 0 {
		if _, err := file.Read(b[:]); err != nil {
			return nil, ObjNone, err
		}
		offset = ((offset + 1) << 7) | int64(b[0]&0x7F)
	}

	basePos := start - offset

	deltaData, err := readCompressedObject(file, size)
	if err != nil {
		return nil, ObjNone, fmt.Errorf("reading ofs-delta payload: %w", err)
	}

	afterDelta, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, ObjNone, err
	}
	if _, err := file.Seek(basePos, io.SeekStart); err != nil {
		return nil, ObjNone, fmt.Errorf("seeking to base object at %d: %w", basePos, err)
	}
	baseData, baseType, err := r.readPackObjectAt(file, idx)
	if err != nil {
		return nil, ObjNone, fmt.Errorf("reading ofs-delta base at %d: %w", basePos, err)
	}
	if _, err := file.Seek(afterDelta, io.SeekStart); err != nil {
		return nil, ObjNone, err
	}

	result, err := applyDelta(baseData, deltaData)
	if err != nil {
		return nil, ObjNone, fmt.Errorf("applying ofs-delta: %w", err)
	}
	return result, baseType, nil
}

func (r *Repository) readRefDelta(file *os.File, idx *packIndex, size int64) ([]byte, ObjectType, error) {
	var baseNameBytes [20]byte
	if _, err := io.ReadFull(file, baseNameBytes[:]); err != nil {
		return nil, ObjNone, fmt.Errorf("reading ref-delta base name: %w", err)
	}
	baseHash := NewHashFromBytes(baseNameBytes)

	deltaData, err := readCompressedObject(file, size)
	if err != nil {
		return nil, ObjNone, fmt.Errorf("reading ref-delta payload: %w", err)
	}

	baseData, baseType, err := r.ReadObject(baseHash)
	if err != nil {
		return nil, ObjNone, fmt.Errorf("reading ref-delta base %s: %w", baseHash.Short(), err)
	}

	result, err := applyDelta(baseData, deltaData)
	if err != nil {
		return nil, ObjNone, fmt.Errorf("applying ref-delta: %w", err)
	}
	return result, baseType, nil
}

// applyDelta reconstructs the target object from base using git's packfile
// delta encoding (a size-checked stream of copy and insert commands).
func applyDelta(base, delta []byte) ([]byte, error) {
	src := bytes.NewReader(delta)

	srcSize, err := readVarInt(src)
	if err != nil {
		return nil, err
	}
	if srcSize != int64(len(base)) {
		return nil, fmt.Errorf("base size mismatch: expected %d, got %d", srcSize, len(base))
	}

	targetSize, err := readVarInt(src)
	if err != nil {
		return nil, err
	}

	result := make([]byte, 0, targetSize)
	for {
		var cmd [1]byte
		if _, err := src.Read(cmd[:]); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		if cmd[0]&0x80 != 0 {
			offset, size, err := readCopyArgs(src, cmd[0])
			if err != nil {
				return nil, err
			}
			if size == 0 {
				size = 0x10000
			}
			if offset+size > int64(len(base)) {
				return nil, fmt.Errorf("copy command exceeds base size")
			}
			result = append(result, base[offset:offset+size]...)
		} else if cmd[0] != 0 {
			n := int(cmd[0] & 0x7f)
			data := make([]byte, n)
			if _, err := io.ReadFull(src, data); err != nil {
				return nil, err
			}
			result = append(result, data...)
		} else {
			return nil, fmt.Errorf("invalid delta command: 0")
		}
	}

	if int64(len(result)) != targetSize {
		return nil, fmt.Errorf("delta result size mismatch: expected %d, got %d", targetSize, len(result))
	}
	return result, nil
}

func readCopyArgs(src *bytes.Reader, cmd byte) (offset, size int64, err error) {
	readByte := func(shift uint, acc *int64) error {
		var b [1]byte
		if _, err := src.Read(b[:]); err != nil {
			return err
		}
		*acc |= int64(b[0]) << shift
		return nil
	}

	for i, bit := range []byte{0x01, 0x02, 0x04, 0x08} {
		if cmd&bit != 0 {
			if err := readByte(uint(i*8), &offset); err != nil {
				return 0, 0, err
			}
		}
	}
	for i, bit := range []byte{0x10, 0x20, 0x40} {
		if cmd&bit != 0 {
			if err := readByte(uint(i*8), &size); err != nil {
				return 0, 0, err
			}
		}
	}
	return offset, size, nil
}

func readVarInt(src *bytes.Reader) (int64, error) {
	var result int64
	var shift uint
	for {
		var b [1]byte
		if _, err := src.Read(b[:]); err != nil {
			return 0, err
		}
		result |= int64(b[0]&0x7f) << shift
		shift += 7
		if b[0]&0x80 == 0 {
			break
		}
	}
	return result, nil
}
