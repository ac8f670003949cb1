package sqlitestore

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/record"
)

type encoded struct {
	data []byte
	err  error
}

// encoder renders values as attribute blobs. Numbers are little-endian.
type encoder struct{}

func (encoder) VisitString(v record.String) encoded { return encoded{data: []byte(v)} }

func (encoder) VisitInt32(v record.Int32) encoded {
	return encoded{data: binary.LittleEndian.AppendUint32(nil, uint32(v))}
}

func (encoder) VisitFloat64(v record.Float64) encoded {
	return encoded{data: binary.LittleEndian.AppendUint64(nil, math.Float64bits(float64(v)))}
}

func (encoder) VisitFloat32(v record.Float32) encoded {
	return encoded{data: binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(v)))}
}

func (encoder) VisitBool(v record.Bool) encoded {
	if v {
		return encoded{data: []byte{1}}
	}

	return encoded{data: []byte{0}}
}

func (encoder) VisitBytes(v record.Bytes) encoded {
	return encoded{data: append([]byte{}, v...)}
}

func (encoder) VisitNested(record.Nested) encoded {
	return encoded{err: fmt.Errorf("%w: nested records cannot be stored as attributes", errors.ErrUnsupportedConversion)}
}

func encodeValue(v record.Value) ([]byte, error) {
	e := record.Visit[encoded](v, encoder{})
	return e.data, e.err
}

func kindName(k record.Kind) string {
	return strings.ToLower(k.String())
}

func decodeValue(kind string, data []byte) (record.Value, error) {
	k, err := record.ParseKind(kind)
	if err != nil {
		return nil, err
	}

	size := map[record.Kind]int{
		record.KindInt32:   4,
		record.KindFloat64: 8,
		record.KindFloat32: 4,
		record.KindBool:    1,
	}
	if n, fixed := size[k]; fixed && len(data) != n {
		return nil, fmt.Errorf("%w: %s value has %d bytes", errors.ErrBadValue, kind, len(data))
	}

	switch k {
	case record.KindString:
		return record.String(data), nil
	case record.KindInt32:
		return record.Int32(int32(binary.LittleEndian.Uint32(data))), nil
	case record.KindFloat64:
		return record.Float64(math.Float64frombits(binary.LittleEndian.Uint64(data))), nil
	case record.KindFloat32:
		return record.Float32(math.Float32frombits(binary.LittleEndian.Uint32(data))), nil
	case record.KindBool:
		return record.Bool(data[0] != 0), nil
	case record.KindBytes:
		return record.Bytes(append([]byte{}, data...)), nil
	}

	return nil, fmt.Errorf("%w: kind %s not storable", errors.ErrUnsupportedConversion, kind)
}
