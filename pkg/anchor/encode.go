package anchor

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"reflect"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/supersafe-org/go-safe-apps/pkg/idl"
)

// EncodeArgs borsh-encodes values following the declared argument types.
func EncodeArgs(def *idl.IDL, fields []idl.Field, values []any) ([]byte, error) {
	if len(fields) != len(values) {
		return nil, fmt.Errorf("anchor: expected %d args, got %d", len(fields), len(values))
	}
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	for i, field := range fields {
		if err := encodeValue(enc, def, field.Type, values[i]); err != nil {
			return nil, fmt.Errorf("anchor: arg %q: %w", field.Name, err)
		}
	}
	return buf.Bytes(), nil
}

func encodeValue(enc *bin.Encoder, def *idl.IDL, typ idl.Type, value any) error {
	switch {
	case typ.Primitive != "":
		return encodePrimitive(enc, typ.Primitive, value)
	case typ.Option != nil:
		if isNil(value) {
			return enc.WriteOption(false)
		}
		if err := enc.WriteOption(true); err != nil {
			return err
		}
		return encodeValue(enc, def, *typ.Option, value)
	case typ.COption != nil:
		if isNil(value) {
			return enc.WriteCOption(false)
		}
		if err := enc.WriteCOption(true); err != nil {
			return err
		}
		return encodeValue(enc, def, *typ.COption, value)
	case typ.Vec != nil:
		items, err := sliceOf(value)
		if err != nil {
			return err
		}
		if err := enc.WriteLength(len(items)); err != nil {
			return err
		}
		for _, item := range items {
			if err := encodeValue(enc, def, *typ.Vec, item); err != nil {
				return err
			}
		}
		return nil
	case typ.Array != nil:
		items, err := sliceOf(value)
		if err != nil {
			return err
		}
		if len(items) != typ.ArrayLen {
			return fmt.Errorf("array needs %d items, got %d", typ.ArrayLen, len(items))
		}
		for _, item := range items {
			if err := encodeValue(enc, def, *typ.Array, item); err != nil {
				return err
			}
		}
		return nil
	case typ.Defined != "":
		return encodeDefined(enc, def, typ.Defined, value)
	case len(typ.Raw) > 0:
		return fmt.Errorf("unsupported type %s", typ)
	default:
		return fmt.Errorf("empty type")
	}
}

func encodeDefined(enc *bin.Encoder, def *idl.IDL, name string, value any) error {
	td, ok := def.Type(name)
	if !ok || td.Type == nil {
		return fmt.Errorf("unknown type %q", name)
	}
	body := td.Type
	switch body.Kind {
	case idl.KindStruct:
		if len(body.Tuple) > 0 {
			items, err := sliceOf(value)
			if err != nil {
				return fmt.Errorf("struct %s: %w", name, err)
			}
			if len(items) != len(body.Tuple) {
				return fmt.Errorf("struct %s needs %d items, got %d", name, len(body.Tuple), len(items))
			}
			for i, t := range body.Tuple {
				if err := encodeValue(enc, def, t, items[i]); err != nil {
					return fmt.Errorf("struct %s item %d: %w", name, i, err)
				}
			}
			return nil
		}
		fields, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("struct %s expects map[string]any, got %T", name, value)
		}
		for _, f := range body.Fields {
			v, present := fields[f.Name]
			if !present {
				return fmt.Errorf("struct %s: missing field %q", name, f.Name)
			}
			if err := encodeValue(enc, def, f.Type, v); err != nil {
				return fmt.Errorf("struct %s field %s: %w", name, f.Name, err)
			}
		}
		return nil
	case idl.KindEnum:
		variant, payload, err := enumValue(value)
		if err != nil {
			return fmt.Errorf("enum %s: %w", name, err)
		}
		for idx, v := range body.Variants {
			if v.Name != variant {
				continue
			}
			if err := enc.WriteUint8(uint8(idx)); err != nil {
				return err
			}
			return encodeVariant(enc, def, v, payload)
		}
		return fmt.Errorf("enum %s has no variant %q", name, variant)
	case idl.KindAlias:
		if body.Alias == nil {
			return fmt.Errorf("alias %s has no target", name)
		}
		return encodeValue(enc, def, *body.Alias, value)
	default:
		return fmt.Errorf("type %s has unsupported kind %q", name, body.Kind)
	}
}

func encodeVariant(enc *bin.Encoder, def *idl.IDL, v idl.Variant, payload any) error {
	switch {
	case len(v.Fields) > 0:
		fields, ok := payload.(map[string]any)
		if !ok {
			return fmt.Errorf("variant %s expects map[string]any, got %T", v.Name, payload)
		}
		for _, f := range v.Fields {
			if err := encodeValue(enc, def, f.Type, fields[f.Name]); err != nil {
				return fmt.Errorf("variant %s field %s: %w", v.Name, f.Name, err)
			}
		}
	case len(v.Tuple) > 0:
		items, err := sliceOf(payload)
		if err != nil {
			return err
		}
		if len(items) != len(v.Tuple) {
			return fmt.Errorf("variant %s needs %d values, got %d", v.Name, len(v.Tuple), len(items))
		}
		for i, t := range v.Tuple {
			if err := encodeValue(enc, def, t, items[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Enum values are either the variant name or a single-key map from the
// variant name to its payload.
func enumValue(value any) (string, any, error) {
	switch v := value.(type) {
	case string:
		return v, nil, nil
	case map[string]any:
		if len(v) != 1 {
			return "", nil, fmt.Errorf("expects a single variant, got %d keys", len(v))
		}
		for name, payload := range v {
			return name, payload, nil
		}
	}
	return "", nil, fmt.Errorf("unsupported enum value %T", value)
}

func encodePrimitive(enc *bin.Encoder, kind string, value any) error {
	switch kind {
	case idl.Bool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("bool expects bool, got %T", value)
		}
		return enc.WriteBool(b)
	case idl.U8, idl.U16, idl.U32, idl.U64:
		n, err := toUint64(value)
		if err != nil {
			return err
		}
		return writeUnsigned(enc, kind, n)
	case idl.I8, idl.I16, idl.I32, idl.I64:
		n, err := toInt64(value)
		if err != nil {
			return err
		}
		return writeSigned(enc, kind, n)
	case idl.F32:
		f, err := toFloat64(value)
		if err != nil {
			return err
		}
		return enc.WriteFloat32(float32(f), bin.LE)
	case idl.F64:
		f, err := toFloat64(value)
		if err != nil {
			return err
		}
		return enc.WriteFloat64(f, bin.LE)
	case idl.U128, idl.I128:
		n, err := toBigInt(value)
		if err != nil {
			return err
		}
		return writeInt128(enc, kind, n)
	case idl.String:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("string expects string, got %T", value)
		}
		return enc.WriteBytes([]byte(s), true)
	case idl.Bytes:
		b, ok := value.([]byte)
		if !ok {
			return fmt.Errorf("bytes expects []byte, got %T", value)
		}
		return enc.WriteBytes(b, true)
	case idl.PublicKey, idl.Pubkey:
		key, err := toPublicKey(value)
		if err != nil {
			return err
		}
		return enc.WriteBytes(key[:], false)
	default:
		return fmt.Errorf("unsupported primitive %q", kind)
	}
}

func writeUnsigned(enc *bin.Encoder, kind string, n uint64) error {
	switch kind {
	case idl.U8:
		if n > math.MaxUint8 {
			return fmt.Errorf("%d overflows u8", n)
		}
		return enc.WriteUint8(uint8(n))
	case idl.U16:
		if n > math.MaxUint16 {
			return fmt.Errorf("%d overflows u16", n)
		}
		return enc.WriteUint16(uint16(n), bin.LE)
	case idl.U32:
		if n > math.MaxUint32 {
			return fmt.Errorf("%d overflows u32", n)
		}
		return enc.WriteUint32(uint32(n), bin.LE)
	default:
		return enc.WriteUint64(n, bin.LE)
	}
}

func writeSigned(enc *bin.Encoder, kind string, n int64) error {
	switch kind {
	case idl.I8:
		if n < math.MinInt8 || n > math.MaxInt8 {
			return fmt.Errorf("%d overflows i8", n)
		}
		return enc.WriteInt8(int8(n))
	case idl.I16:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return fmt.Errorf("%d overflows i16", n)
		}
		return enc.WriteInt16(int16(n), bin.LE)
	case idl.I32:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return fmt.Errorf("%d overflows i32", n)
		}
		return enc.WriteInt32(int32(n), bin.LE)
	default:
		return enc.WriteInt64(n, bin.LE)
	}
}

var (
	two64  = new(big.Int).Lsh(big.NewInt(1), 64)
	two128 = new(big.Int).Lsh(big.NewInt(1), 128)
	mask64 = new(big.Int).Sub(two64, big.NewInt(1))
)

func writeInt128(enc *bin.Encoder, kind string, n *big.Int) error {
	v := new(big.Int).Set(n)
	if kind == idl.U128 && v.Sign() < 0 {
		return fmt.Errorf("%s is negative for u128", n)
	}
	if v.Sign() < 0 {
		v.Add(v, two128)
	}
	if v.Cmp(two128) >= 0 {
		return fmt.Errorf("%s overflows %s", n, kind)
	}
	lo := new(big.Int).And(v, mask64).Uint64()
	hi := new(big.Int).Rsh(v, 64).Uint64()
	return enc.WriteUint128(bin.Uint128{Lo: lo, Hi: hi}, bin.LE)
}

func toUint64(value any) (uint64, error) {
	switch v := value.(type) {
	case uint8:
		return uint64(v), nil
	case uint16:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case uint64:
		return v, nil
	case uint:
		return uint64(v), nil
	case int, int8, int16, int32, int64:
		n, _ := toInt64(v)
		if n < 0 {
			return 0, fmt.Errorf("negative value %d for unsigned type", n)
		}
		return uint64(n), nil
	case decimal.Decimal:
		if !v.IsInteger() || v.Sign() < 0 {
			return 0, fmt.Errorf("decimal %s is not a non-negative integer", v)
		}
		if !v.BigInt().IsUint64() {
			return 0, fmt.Errorf("decimal %s overflows u64", v)
		}
		return v.BigInt().Uint64(), nil
	case *big.Int:
		if v == nil || v.Sign() < 0 || !v.IsUint64() {
			return 0, fmt.Errorf("big int %v does not fit u64", v)
		}
		return v.Uint64(), nil
	default:
		return 0, fmt.Errorf("unsupported integer value %T", value)
	}
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8, uint16, uint32, uint64, uint:
		n, _ := toUint64(v)
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows i64", n)
		}
		return int64(n), nil
	case decimal.Decimal:
		if !v.IsInteger() || !v.BigInt().IsInt64() {
			return 0, fmt.Errorf("decimal %s is not an i64", v)
		}
		return v.IntPart(), nil
	default:
		return 0, fmt.Errorf("unsupported integer value %T", value)
	}
}

func toFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case decimal.Decimal:
		f, _ := v.Float64()
		return f, nil
	default:
		n, err := toInt64(value)
		if err != nil {
			return 0, fmt.Errorf("unsupported float value %T", value)
		}
		return float64(n), nil
	}
}

func toBigInt(value any) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil big int")
		}
		return v, nil
	case bin.Uint128:
		return v.BigInt(), nil
	case decimal.Decimal:
		if !v.IsInteger() {
			return nil, fmt.Errorf("decimal %s is not an integer", v)
		}
		return v.BigInt(), nil
	default:
		if n, err := toInt64(value); err == nil {
			return big.NewInt(n), nil
		}
		n, err := toUint64(value)
		if err != nil {
			return nil, err
		}
		return new(big.Int).SetUint64(n), nil
	}
}

func toPublicKey(value any) (solana.PublicKey, error) {
	switch v := value.(type) {
	case solana.PublicKey:
		return v, nil
	case *solana.PublicKey:
		if v == nil {
			return solana.PublicKey{}, fmt.Errorf("nil public key")
		}
		return *v, nil
	case string:
		return solana.PublicKeyFromBase58(v)
	default:
		return solana.PublicKey{}, fmt.Errorf("public key expects solana.PublicKey, got %T", value)
	}
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func sliceOf(value any) ([]any, error) {
	if items, ok := value.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expects a slice, got %T", value)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
