package anchor

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/supersafe-org/go-safe-apps/pkg/idl"
)

// DecodeStruct decodes a borsh body laid out as the given fields into a
// map keyed by field name. Integers keep their declared width (uint8 ...
// uint64, int8 ... int64), 128-bit integers become *big.Int, public keys
// become solana.PublicKey, vectors and arrays become []any, options become
// nil or the inner value and enums become a single-key map.
func DecodeStruct(def *idl.IDL, fields []idl.Field, data []byte) (map[string]any, error) {
	out, err := decodeFields(bin.NewBorshDecoder(data), def, fields)
	if err != nil {
		return nil, fmt.Errorf("anchor: %w", err)
	}
	return out, nil
}

func decodeFields(dec *bin.Decoder, def *idl.IDL, fields []idl.Field) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		v, err := decodeValue(dec, def, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		out[f.Name] = v
	}
	return out, nil
}

func decodeValue(dec *bin.Decoder, def *idl.IDL, typ idl.Type) (any, error) {
	switch {
	case typ.Primitive != "":
		return decodePrimitive(dec, typ.Primitive)
	case typ.Option != nil:
		some, err := dec.ReadOption()
		if err != nil || !some {
			return nil, err
		}
		return decodeValue(dec, def, *typ.Option)
	case typ.COption != nil:
		some, err := dec.ReadCOption()
		if err != nil || !some {
			return nil, err
		}
		return decodeValue(dec, def, *typ.COption)
	case typ.Vec != nil:
		n, err := dec.ReadLength()
		if err != nil {
			return nil, err
		}
		return decodeItems(dec, def, *typ.Vec, n)
	case typ.Array != nil:
		return decodeItems(dec, def, *typ.Array, typ.ArrayLen)
	case typ.Defined != "":
		return decodeDefined(dec, def, typ.Defined)
	case len(typ.Raw) > 0:
		return nil, fmt.Errorf("unsupported type %s", typ)
	default:
		return nil, fmt.Errorf("empty type")
	}
}

func decodeTuple(dec *bin.Decoder, def *idl.IDL, types []idl.Type) ([]any, error) {
	items := make([]any, 0, len(types))
	for _, t := range types {
		item, err := decodeValue(dec, def, t)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeItems(dec *bin.Decoder, def *idl.IDL, typ idl.Type, n int) ([]any, error) {
	if n > dec.Remaining() && n > 0 {
		return nil, fmt.Errorf("length %d exceeds remaining %d bytes", n, dec.Remaining())
	}
	items := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := decodeValue(dec, def, typ)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func decodeDefined(dec *bin.Decoder, def *idl.IDL, name string) (any, error) {
	td, ok := def.Type(name)
	if !ok || td.Type == nil {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	body := td.Type
	switch body.Kind {
	case idl.KindStruct:
		if len(body.Tuple) > 0 {
			return decodeTuple(dec, def, body.Tuple)
		}
		return decodeFields(dec, def, body.Fields)
	case idl.KindEnum:
		idx, err := dec.ReadUint8()
		if err != nil {
			return nil, err
		}
		if int(idx) >= len(body.Variants) {
			return nil, fmt.Errorf("enum %s: variant %d out of range", name, idx)
		}
		v := body.Variants[idx]
		var payload any
		switch {
		case len(v.Fields) > 0:
			payload, err = decodeFields(dec, def, v.Fields)
		case len(v.Tuple) > 0:
			payload, err = decodeTuple(dec, def, v.Tuple)
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{v.Name: payload}, nil
	case idl.KindAlias:
		if body.Alias == nil {
			return nil, fmt.Errorf("alias %s has no target", name)
		}
		return decodeValue(dec, def, *body.Alias)
	default:
		return nil, fmt.Errorf("type %s has unsupported kind %q", name, body.Kind)
	}
}

func decodePrimitive(dec *bin.Decoder, kind string) (any, error) {
	switch kind {
	case idl.Bool:
		return dec.ReadBool()
	case idl.U8:
		return dec.ReadUint8()
	case idl.I8:
		return dec.ReadInt8()
	case idl.U16:
		return dec.ReadUint16(bin.LE)
	case idl.I16:
		return dec.ReadInt16(bin.LE)
	case idl.U32:
		return dec.ReadUint32(bin.LE)
	case idl.I32:
		return dec.ReadInt32(bin.LE)
	case idl.U64:
		return dec.ReadUint64(bin.LE)
	case idl.I64:
		return dec.ReadInt64(bin.LE)
	case idl.F32:
		return dec.ReadFloat32(bin.LE)
	case idl.F64:
		return dec.ReadFloat64(bin.LE)
	case idl.U128:
		v, err := dec.ReadUint128(bin.LE)
		if err != nil {
			return nil, err
		}
		return v.BigInt(), nil
	case idl.I128:
		v, err := dec.ReadUint128(bin.LE)
		if err != nil {
			return nil, err
		}
		n := v.BigInt()
		if v.Hi>>63 == 1 {
			n.Sub(n, two128)
		}
		return n, nil
	case idl.String:
		b, err := readLengthPrefixed(dec)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case idl.Bytes:
		return readLengthPrefixed(dec)
	case idl.PublicKey, idl.Pubkey:
		b, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return nil, err
		}
		return solana.PublicKeyFromBytes(b), nil
	default:
		return nil, fmt.Errorf("unsupported primitive %q", kind)
	}
}

func readLengthPrefixed(dec *bin.Decoder) ([]byte, error) {
	n, err := dec.ReadLength()
	if err != nil {
		return nil, err
	}
	b, err := dec.ReadNBytes(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}
