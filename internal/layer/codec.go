package layer

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when decoding a layer with an unrecognized type.
var ErrUnknownKind = errors.New("unknown layer kind")

// TypeField is the key holding the discriminant in an encoded layer.
const TypeField = "type"

// Fields is a layer flattened into one JSON value per attribute, the shape
// the replicated store merges field by field.
type Fields map[string]json.RawMessage

// Encode flattens l into per-attribute JSON values.
func Encode(l Layer) (Fields, error) {
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal %s layer: %w", l.Kind(), err)
	}
	var f Fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("split %s layer: %w", l.Kind(), err)
	}
	f[TypeField], _ = json.Marshal(l.Kind())
	return f, nil
}

// Decode rebuilds a layer from its fields.
func Decode(f Fields) (Layer, error) {
	var kind Kind
	if err := json.Unmarshal(f[TypeField], &kind); err != nil {
		return nil, fmt.Errorf("read layer type: %w", err)
	}
	var l Layer
	switch kind {
	case KindRectangle:
		l = &Rectangle{}
	case KindEllipse:
		l = &Ellipse{}
	case KindTriangle:
		l = &Triangle{}
	case KindText:
		l = &Text{}
	case KindImage:
		l = &Image{}
	case KindPath:
		l = &Path{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("join %s layer: %w", kind, err)
	}
	if err := json.Unmarshal(raw, l); err != nil {
		return nil, fmt.Errorf("unmarshal %s layer: %w", kind, err)
	}
	return l, nil
}

func marshalTriple(a, b, c float64) ([]byte, error) {
	return json.Marshal([3]float64{a, b, c})
}

func unmarshalTriple(raw []byte, a, b, c *float64) error {
	var t [3]float64
	if err := json.Unmarshal(raw, &t); err != nil {
		return fmt.Errorf("decode point: %w", err)
	}
	*a, *b, *c = t[0], t[1], t[2]
	return nil
}
