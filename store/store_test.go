package store

import (
	"testing"

	"github.com/hupe1980/quarry/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermValueTags(t *testing.T) {
	tests := []struct {
		name    string
		value   TermValue
		kind    ValueKind
		payload uint64
	}{
		{"Single", Single(42), KindSingle, 42},
		{"SingleMax", Single(model.MaxEntryID), KindSingle, uint64(model.MaxEntryID)},
		{"SmallSet", SmallSet(7), KindSmallSet, 7},
		{"LargeSet", LargeSet(3), KindLargeSet, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.value.Kind())
			assert.Equal(t, tt.payload, tt.value.Payload())
			assert.NoError(t, tt.value.Validate())
		})
	}

	assert.ErrorIs(t, TermValue(0b11).Validate(), ErrCorrupt)
	assert.Equal(t, "invalid", TermValue(0b11).Kind().String())
}

func decodeAll(t *testing.T, buf []byte) ([]model.EntryID, error) {
	t.Helper()
	dec, err := NewSmallSetDecoder(buf)
	if err != nil {
		return nil, err
	}
	var ids []model.EntryID
	for {
		id, ok, err := dec.Next()
		if err != nil {
			return ids, err
		}
		if !ok {
			return ids, nil
		}
		ids = append(ids, id)
	}
}

func TestSmallSetRoundTrip(t *testing.T) {
	ids := []model.EntryID{0, 1, 5, 128, 1 << 20, model.MaxEntryID}
	buf, err := EncodeSmallSet(nil, ids)
	require.NoError(t, err)

	got, err := decodeAll(t, buf)
	require.NoError(t, err)
	assert.Equal(t, ids, got)

	dec, err := NewSmallSetDecoder(buf)
	require.NoError(t, err)
	assert.Equal(t, len(ids), dec.Len())

	_, _, _ = dec.Next()
	_, _, _ = dec.Next()
	dec.Reset()
	first, ok, err := dec.Next()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.EntryID(0), first)
}

func TestSmallSetRejectsUnordered(t *testing.T) {
	_, err := EncodeSmallSet(nil, []model.EntryID{3, 3})
	assert.Error(t, err)

	_, err = EncodeSmallSet(nil, []model.EntryID{3, 1})
	assert.Error(t, err)
}

func TestSmallSetCorrupt(t *testing.T) {
	t.Run("EmptyHeader", func(t *testing.T) {
		_, err := NewSmallSetDecoder(nil)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("Truncated", func(t *testing.T) {
		buf, err := EncodeSmallSet(nil, []model.EntryID{1, 300, 70000})
		require.NoError(t, err)
		_, err = decodeAll(t, buf[:len(buf)-1])
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("ZeroDelta", func(t *testing.T) {
		_, err := decodeAll(t, []byte{2, 5, 0})
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("CountTooLarge", func(t *testing.T) {
		_, err := NewSmallSetDecoder([]byte{200, 1})
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}
