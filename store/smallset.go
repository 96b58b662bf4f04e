package store

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/quarry/model"
)

// Packed small-set layout:
//
//	uvarint count | uvarint first id | uvarint delta ... (count-1 deltas, all > 0)

// EncodeSmallSet appends the packed form of ids to dst.
// ids must be strictly ascending.
func EncodeSmallSet(dst []byte, ids []model.EntryID) ([]byte, error) {
	dst = binary.AppendUvarint(dst, uint64(len(ids)))
	var prev model.EntryID
	for i, id := range ids {
		if id > model.MaxEntryID {
			return nil, fmt.Errorf("entry id %d out of range", id)
		}
		if i == 0 {
			dst = binary.AppendUvarint(dst, uint64(id))
		} else {
			if id <= prev {
				return nil, fmt.Errorf("ids not strictly ascending at position %d", i)
			}
			dst = binary.AppendUvarint(dst, uint64(id-prev))
		}
		prev = id
	}
	return dst, nil
}

// SmallSetDecoder decodes a packed small set in place.
type SmallSetDecoder struct {
	buf  []byte
	pos  int
	n    int
	read int
	prev model.EntryID
}

// NewSmallSetDecoder reads the header of a packed small set.
func NewSmallSetDecoder(buf []byte) (SmallSetDecoder, error) {
	n, k := binary.Uvarint(buf)
	if k <= 0 || n > uint64(len(buf)) {
		return SmallSetDecoder{}, fmt.Errorf("%w: small set header", ErrCorrupt)
	}
	return SmallSetDecoder{buf: buf, pos: k, n: int(n)}, nil
}

// Len returns the number of ids in the set.
func (d *SmallSetDecoder) Len() int { return d.n }

// Reset rewinds the decoder to the first id.
func (d *SmallSetDecoder) Reset() {
	_, k := binary.Uvarint(d.buf)
	d.pos = k
	d.read = 0
	d.prev = 0
}

// Next returns the next id, or false once the set is exhausted.
func (d *SmallSetDecoder) Next() (model.EntryID, bool, error) {
	if d.read >= d.n {
		return 0, false, nil
	}
	v, k := binary.Uvarint(d.buf[d.pos:])
	if k <= 0 {
		return 0, false, fmt.Errorf("%w: truncated small set at id %d", ErrCorrupt, d.read)
	}
	d.pos += k

	id := model.EntryID(v)
	if d.read > 0 {
		if v == 0 {
			return 0, false, fmt.Errorf("%w: non-ascending small set at id %d", ErrCorrupt, d.read)
		}
		id = d.prev + model.EntryID(v)
		if id <= d.prev {
			return 0, false, fmt.Errorf("%w: small set id overflow at id %d", ErrCorrupt, d.read)
		}
	}
	if id > model.MaxEntryID {
		return 0, false, fmt.Errorf("%w: small set id %d out of range", ErrCorrupt, id)
	}
	d.prev = id
	d.read++
	return id, true, nil
}
