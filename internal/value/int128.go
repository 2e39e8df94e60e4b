package value

import "math/big"

// Int128 is a two's complement 128-bit integer split into words.
type Int128 struct {
	Hi int64
	Lo uint64
}

// UInt128 is an unsigned 128-bit integer split into words.
type UInt128 struct {
	Hi uint64
	Lo uint64
}

func (Int128) Kind() Kind  { return KindInt128 }
func (UInt128) Kind() Kind { return KindUInt128 }

func (v Int128) String() string  { return v.Big().String() }
func (v UInt128) String() string { return v.Big().String() }

var (
	two64      = new(big.Int).Lsh(big.NewInt(1), 64)
	maxInt128  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxUInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

func (v Int128) Big() *big.Int {
	b := big.NewInt(v.Hi)
	b.Mul(b, two64)
	return b.Add(b, new(big.Int).SetUint64(v.Lo))
}

func (v UInt128) Big() *big.Int {
	b := new(big.Int).SetUint64(v.Hi)
	b.Mul(b, two64)
	return b.Add(b, new(big.Int).SetUint64(v.Lo))
}

// Int128FromBig converts b, reporting false when it does not fit.
func Int128FromBig(b *big.Int) (Int128, bool) {
	if b.Cmp(minInt128) < 0 || b.Cmp(maxInt128) > 0 {
		return Int128{}, false
	}
	// Floor division keeps Lo in [0, 2^64) for negative values.
	hi, lo := new(big.Int).DivMod(b, two64, new(big.Int))
	return Int128{Hi: hi.Int64(), Lo: lo.Uint64()}, true
}

// UInt128FromBig converts b, reporting false when it does not fit.
func UInt128FromBig(b *big.Int) (UInt128, bool) {
	if b.Sign() < 0 || b.Cmp(maxUInt128) > 0 {
		return UInt128{}, false
	}
	hi, lo := new(big.Int).DivMod(b, two64, new(big.Int))
	return UInt128{Hi: hi.Uint64(), Lo: lo.Uint64()}, true
}

// Int128From widens a 64-bit integer.
func Int128From(n int64) Int128 {
	hi := int64(0)
	if n < 0 {
		hi = -1
	}
	return Int128{Hi: hi, Lo: uint64(n)}
}
