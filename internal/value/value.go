// Package value is the runtime value model: a closed set of tagged values,
// the sparse variable store, and the descriptors exchanged with native code.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Kind uint8

const (
	KindVoid Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindUInt128
	KindFloat32
	KindFloat64
	KindString
	KindFunction
	KindModule
)

var kindNames = [...]string{
	KindVoid:     "Void",
	KindInt8:     "Int8",
	KindInt16:    "Int16",
	KindInt32:    "Int32",
	KindInt64:    "Int64",
	KindInt128:   "Int128",
	KindUInt8:    "UInt8",
	KindUInt16:   "UInt16",
	KindUInt32:   "UInt32",
	KindUInt64:   "UInt64",
	KindUInt128:  "UInt128",
	KindFloat32:  "Float32",
	KindFloat64:  "Float64",
	KindString:   "String",
	KindFunction: "Function",
	KindModule:   "Module",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsInteger reports whether k is one of the ten integer kinds.
func (k Kind) IsInteger() bool { return k >= KindInt8 && k <= KindUInt128 }

// Value is implemented by exactly the types declared in this package.
type Value interface {
	Kind() Kind
	String() string
	value()
}

type (
	Int8    int8
	Int16   int16
	Int32   int32
	Int64   int64
	UInt8   uint8
	UInt16  uint16
	UInt32  uint32
	UInt64  uint64
	Float32 float32
	Float64 float64
	String  string
	Void    struct{}
)

func (Int8) Kind() Kind { return KindInt8 }
func (Int16) Kind() Kind { return KindInt16 }
func (Int32) Kind() Kind { return KindInt32 }
func (Int64) Kind() Kind { return KindInt64 }
func (UInt8) Kind() Kind { return KindUInt8 }
func (UInt16) Kind() Kind { return KindUInt16 }
func (UInt32) Kind() Kind { return KindUInt32 }
func (UInt64) Kind() Kind { return KindUInt64 }
func (Float32) Kind() Kind { return KindFloat32 }
func (Float64) Kind() Kind { return KindFloat64 }
func (String) Kind() Kind { return KindString }
func (Void) Kind() Kind { return KindVoid }

func (v Int8) String() string { return strconv.FormatInt(int64(v), 10) }
func (v Int16) String() string { return strconv.FormatInt(int64(v), 10) }
func (v Int32) String() string { return strconv.FormatInt(int64(v), 10) }
func (v Int64) String() string { return strconv.FormatInt(int64(v), 10) }
func (v UInt8) String() string { return strconv.FormatUint(uint64(v), 10) }
func (v UInt16) String() string { return strconv.FormatUint(uint64(v), 10) }
func (v UInt32) String() string { return strconv.FormatUint(uint64(v), 10) }
func (v UInt64) String() string { return strconv.FormatUint(uint64(v), 10) }
func (v Float32) String() string { return formatFloat(float64(v), 32) }
func (v Float64) String() string { return formatFloat(float64(v), 64) }
func (v String) String() string { return string(v) }
func (Void) String() string { return "<Void>" }

func (Int8) value() {}
func (Int16) value() {}
func (Int32) value() {}
func (Int64) value() {}
func (Int128) value() {}
func (UInt8) value() {}
func (UInt16) value() {}
func (UInt32) value() {}
func (UInt64) value() {}
func (UInt128) value() {}
func (Float32) value() {}
func (Float64) value() {}
func (String) value() {}
func (*Function) value() {}
func (*Module) value() {}
func (Void) value() {}

// formatFloat prints the shortest decimal that reads back as f, without an
// exponent.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// Debug renders v the way a debugger would: strings are quoted and floats
// always show a fraction. Everything else matches String.
func Debug(v Value) string {
	switch v := v.(type) {
	case String:
		return strconv.Quote(string(v))
	case Float32, Float64:
		s := v.String()
		if !strings.ContainsAny(s, ".nN") {
			s += ".0"
		}
		return s
	case nil:
		return "<none>"
	}
	return v.String()
}

// Describe is used in error messages.
func Describe(v Value) string {
	if v == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s(%s)", v.Kind(), Debug(v))
}
