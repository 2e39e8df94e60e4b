package ffi

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
)

// cValue mirrors hug_value on 64-bit targets:
//
//	typedef struct {
//	    uint32_t tag;
//	    uint32_t pad;
//	    union {
//	        int64_t i; uint64_t u; double f64; float f32;
//	        struct { uint64_t lo, hi; } wide;
//	        struct { const char* ptr; size_t len; } str;
//	    } as;
//	} hug_value;
//
// a holds the first word of the union and b the second.
type cValue struct {
	tag uint32
	pad uint32
	a   uint64
	b   uint64
}

// cPackedArgs mirrors hug_packed_args.
type cPackedArgs struct {
	len  uintptr
	args unsafe.Pointer
}

// cReturnValue mirrors hug_return_value.
type cReturnValue struct {
	len    uintptr
	values unsafe.Pointer
}

const cValueSize = int(unsafe.Sizeof(cValue{}))

// Value tags on the wire.
const (
	tagNone    uint32 = 0
	tagInt8    uint32 = 1
	tagInt16   uint32 = 2
	tagInt32   uint32 = 3
	tagInt64   uint32 = 4
	tagInt128  uint32 = 5
	tagUInt8   uint32 = 6
	tagUInt16  uint32 = 7
	tagUInt32  uint32 = 8
	tagUInt64  uint32 = 9
	tagUInt128 uint32 = 10
	tagFloat32 uint32 = 11
	tagFloat64 uint32 = 12
	tagString  uint32 = 13
	tagVoid    uint32 = 14
	tagError   uint32 = 255
)

// allocator hands out memory the library may read during a call.
type allocator interface {
	alloc(size int) unsafe.Pointer
}

// goAllocator keeps Go allocations reachable until the call returns.
type goAllocator struct {
	blocks [][]byte
}

func (m *goAllocator) alloc(size int) unsafe.Pointer {
	if size == 0 {
		size = 1
	}
	b := make([]byte, size)
	m.blocks = append(m.blocks, b)
	return unsafe.Pointer(&b[0])
}

// encodeArgs lays args out as a hug_value array in memory from mem.
func encodeArgs(fn string, args value.PackedArgs, mem allocator) (unsafe.Pointer, int, error) {
	if len(args) == 0 {
		return nil, 0, nil
	}
	p := mem.alloc(cValueSize * len(args))
	out := unsafe.Slice((*cValue)(p), len(args))
	for i, arg := range args {
		if err := encodeValue(arg, &out[i], mem); err != nil {
			return nil, 0, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
	}
	return p, len(args), nil
}

func encodeValue(v value.Value, out *cValue, mem allocator) error {
	*out = cValue{}
	switch v := v.(type) {
	case nil:
		out.tag = tagNone
	case value.Int8:
		out.tag, out.a = tagInt8, uint64(int64(v))
	case value.Int16:
		out.tag, out.a = tagInt16, uint64(int64(v))
	case value.Int32:
		out.tag, out.a = tagInt32, uint64(int64(v))
	case value.Int64:
		out.tag, out.a = tagInt64, uint64(v)
	case value.Int128:
		out.tag, out.a, out.b = tagInt128, v.Lo, uint64(v.Hi)
	case value.UInt8:
		out.tag, out.a = tagUInt8, uint64(v)
	case value.UInt16:
		out.tag, out.a = tagUInt16, uint64(v)
	case value.UInt32:
		out.tag, out.a = tagUInt32, uint64(v)
	case value.UInt64:
		out.tag, out.a = tagUInt64, uint64(v)
	case value.UInt128:
		out.tag, out.a, out.b = tagUInt128, v.Lo, v.Hi
	case value.Float32:
		out.tag, out.a = tagFloat32, uint64(math.Float32bits(float32(v)))
	case value.Float64:
		out.tag, out.a = tagFloat64, math.Float64bits(float64(v))
	case value.String:
		// NUL terminated as well, for libraries that expect C strings.
		p := mem.alloc(len(v) + 1)
		buf := unsafe.Slice((*byte)(p), len(v)+1)
		copy(buf, v)
		buf[len(v)] = 0
		out.tag, out.a, out.b = tagString, uint64(uintptr(p)), uint64(len(v))
	case value.Void:
		out.tag = tagVoid
	default:
		return diagnostics.NewError(diagnostics.ErrT002, token.Pos{}, v.Kind())
	}
	return nil
}

// decodeValues copies n hug_values at p into Go values.
func decodeValues(fn string, p unsafe.Pointer, n int) ([]value.Value, error) {
	if p == nil || n == 0 {
		return nil, nil
	}
	in := unsafe.Slice((*cValue)(p), n)
	out := make([]value.Value, n)
	for i := range in {
		v, err := decodeValue(fn, &in[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func decodeValue(fn string, in *cValue) (value.Value, error) {
	switch in.tag {
	case tagNone:
		return nil, nil
	case tagInt8:
		return value.Int8(int64(in.a)), nil
	case tagInt16:
		return value.Int16(int64(in.a)), nil
	case tagInt32:
		return value.Int32(int64(in.a)), nil
	case tagInt64:
		return value.Int64(in.a), nil
	case tagInt128:
		return value.Int128{Hi: int64(in.b), Lo: in.a}, nil
	case tagUInt8:
		return value.UInt8(in.a), nil
	case tagUInt16:
		return value.UInt16(in.a), nil
	case tagUInt32:
		return value.UInt32(in.a), nil
	case tagUInt64:
		return value.UInt64(in.a), nil
	case tagUInt128:
		return value.UInt128{Hi: in.b, Lo: in.a}, nil
	case tagFloat32:
		return value.Float32(math.Float32frombits(uint32(in.a))), nil
	case tagFloat64:
		return value.Float64(math.Float64frombits(in.a)), nil
	case tagString:
		return value.String(cString(in)), nil
	case tagVoid:
		return value.Void{}, nil
	case tagError:
		return nil, diagnostics.NewError(diagnostics.ErrT001, token.Pos{}, fn+": "+cString(in))
	}
	return nil, diagnostics.NewError(diagnostics.ErrT001, token.Pos{}, fmt.Sprintf("%s: unknown value tag %d", fn, in.tag))
}

// cString copies the string payload of in.
func cString(in *cValue) string {
	if in.a == 0 || in.b == 0 {
		return ""
	}
	p := unsafe.Pointer(uintptr(in.a))
	return string(unsafe.Slice((*byte)(p), int(in.b)))
}
