package memstore

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/quarry/model"
	"github.com/hupe1980/quarry/store"
)

// Entry record layout, one block per stored field in ascending field order:
//
//	uvarint field | byte kind | payload
//
// Payloads: bytes = uvarint length + data, int64/float64 = 8 bytes little endian.

type valueKind uint8

const (
	kindBytes valueKind = iota + 1
	kindInt64
	kindFloat64
)

type storedValue struct {
	field model.FieldID
	kind  valueKind
	b     []byte
	bits  uint64
}

func appendRecord(dst []byte, values []storedValue) []byte {
	for _, v := range values {
		dst = binary.AppendUvarint(dst, uint64(v.field))
		dst = append(dst, byte(v.kind))
		switch v.kind {
		case kindBytes:
			dst = binary.AppendUvarint(dst, uint64(len(v.b)))
			dst = append(dst, v.b...)
		default:
			dst = binary.LittleEndian.AppendUint64(dst, v.bits)
		}
	}
	return dst
}

// findValue scans a record for field. The returned bytes alias rec.
func findValue(rec []byte, field model.FieldID) (valueKind, []byte, bool, error) {
	pos := 0
	for pos < len(rec) {
		f, k := binary.Uvarint(rec[pos:])
		if k <= 0 || f > math.MaxUint32 {
			return 0, nil, false, fmt.Errorf("%w: record field header at %d", store.ErrCorrupt, pos)
		}
		pos += k
		if pos >= len(rec) {
			return 0, nil, false, fmt.Errorf("%w: record kind missing at %d", store.ErrCorrupt, pos)
		}
		kind := valueKind(rec[pos])
		pos++

		var payload []byte
		switch kind {
		case kindBytes:
			n, k := binary.Uvarint(rec[pos:])
			if k <= 0 || n > uint64(len(rec)-pos-k) {
				return 0, nil, false, fmt.Errorf("%w: record bytes length at %d", store.ErrCorrupt, pos)
			}
			pos += k
			payload = rec[pos : pos+int(n) : pos+int(n)]
			pos += int(n)
		case kindInt64, kindFloat64:
			if len(rec)-pos < 8 {
				return 0, nil, false, fmt.Errorf("%w: record number truncated at %d", store.ErrCorrupt, pos)
			}
			payload = rec[pos : pos+8 : pos+8]
			pos += 8
		default:
			return 0, nil, false, fmt.Errorf("%w: record value kind %d", store.ErrCorrupt, kind)
		}

		switch {
		case model.FieldID(f) == field:
			return kind, payload, true, nil
		case model.FieldID(f) > field:
			return 0, nil, false, nil
		}
	}
	return 0, nil, false, nil
}
