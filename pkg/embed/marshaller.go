package hug

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/funvibe/hug/internal/value"
)

// Marshaller handles conversion between Go and script values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

var (
	valueType  = reflect.TypeOf((*value.Value)(nil)).Elem()
	bigIntType = reflect.TypeOf((*big.Int)(nil))
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// ToValue converts a Go value to a script value. Go ints become Int64 and
// bools UInt8, matching how literals of those types behave in scripts.
func (m *Marshaller) ToValue(val interface{}) (value.Value, error) {
	if val == nil {
		return value.Void{}, nil
	}
	if v, ok := val.(value.Value); ok {
		return v, nil
	}
	if b, ok := val.(*big.Int); ok {
		if i, ok := value.Int128FromBig(b); ok {
			return i, nil
		}
		if u, ok := value.UInt128FromBig(b); ok {
			return u, nil
		}
		return nil, fmt.Errorf("integer %s does not fit in 128 bits", b)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int8:
		return value.Int8(v.Int()), nil
	case reflect.Int16:
		return value.Int16(v.Int()), nil
	case reflect.Int32:
		return value.Int32(v.Int()), nil
	case reflect.Int, reflect.Int64:
		return value.Int64(v.Int()), nil
	case reflect.Uint8:
		return value.UInt8(v.Uint()), nil
	case reflect.Uint16:
		return value.UInt16(v.Uint()), nil
	case reflect.Uint32:
		return value.UInt32(v.Uint()), nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return value.UInt64(v.Uint()), nil
	case reflect.Float32:
		return value.Float32(v.Float()), nil
	case reflect.Float64:
		return value.Float64(v.Float()), nil
	case reflect.Bool:
		if v.Bool() {
			return value.UInt8(1), nil
		}
		return value.UInt8(0), nil
	case reflect.String:
		return value.String(v.String()), nil
	}
	return nil, fmt.Errorf("cannot pass %T to a script", val)
}

// FromValue converts a script value to a Go value.
// targetType is optional; if provided, the result is converted to it.
func (m *Marshaller) FromValue(v value.Value, targetType reflect.Type) (interface{}, error) {
	if targetType != nil && (targetType == valueType || reflect.TypeOf(v) == targetType) {
		return v, nil
	}

	var out interface{}
	switch v := v.(type) {
	case nil, value.Void:
		return nil, nil
	case value.Int8:
		out = int8(v)
	case value.Int16:
		out = int16(v)
	case value.Int32:
		out = int32(v)
	case value.Int64:
		out = int64(v)
	case value.UInt8:
		out = uint8(v)
	case value.UInt16:
		out = uint16(v)
	case value.UInt32:
		out = uint32(v)
	case value.UInt64:
		out = uint64(v)
	case value.Int128:
		out = v.Big()
	case value.UInt128:
		out = v.Big()
	case value.Float32:
		out = float32(v)
	case value.Float64:
		out = float64(v)
	case value.String:
		out = string(v)
	default:
		return nil, fmt.Errorf("cannot convert %s to a Go value", v.Kind())
	}
	if targetType == nil {
		return out, nil
	}
	return convert(out, targetType)
}

func convert(val interface{}, targetType reflect.Type) (interface{}, error) {
	rv := reflect.ValueOf(val)
	switch {
	case rv.Type().AssignableTo(targetType):
		return val, nil
	case targetType.Kind() == reflect.Bool && rv.CanUint():
		return rv.Uint() != 0, nil
	case rv.Type() == bigIntType:
		b := val.(*big.Int)
		switch {
		case targetType.Kind() >= reflect.Int && targetType.Kind() <= reflect.Int64 && b.IsInt64():
			return reflect.ValueOf(b.Int64()).Convert(targetType).Interface(), nil
		case targetType.Kind() >= reflect.Uint && targetType.Kind() <= reflect.Uint64 && b.IsUint64():
			return reflect.ValueOf(b.Uint64()).Convert(targetType).Interface(), nil
		}
	case rv.Type().ConvertibleTo(targetType) && !isString(targetType):
		return rv.Convert(targetType).Interface(), nil
	case isString(rv.Type()) && isString(targetType):
		return rv.Convert(targetType).Interface(), nil
	}
	return nil, fmt.Errorf("cannot convert %s to %s", rv.Type(), targetType)
}

// isString keeps integer values from converting to strings as runes.
func isString(t reflect.Type) bool { return t.Kind() == reflect.String }
