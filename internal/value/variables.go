package value

import "github.com/funvibe/hug/internal/ident"

// Variables is a sparse store indexed by identifier. It grows on demand; an
// id that was never set has no value.
type Variables struct {
	slots []Value
	count int
}

func NewVariables() *Variables {
	return &Variables{}
}

func (v *Variables) Get(id ident.Ident) (Value, bool) {
	if id < 0 || int(id) >= len(v.slots) {
		return nil, false
	}
	val := v.slots[id]
	return val, val != nil
}

// Set binds id and returns the value it replaced, nil if none, so the caller
// can release it.
func (v *Variables) Set(id ident.Ident, val Value) Value {
	if id < 0 {
		return nil
	}
	if int(id) >= len(v.slots) {
		grown := make([]Value, int(id)+1, max(int(id)+1, 2*len(v.slots)))
		copy(grown, v.slots)
		v.slots = grown
	}
	prev := v.slots[id]
	v.slots[id] = val
	switch {
	case prev == nil && val != nil:
		v.count++
	case prev != nil && val == nil:
		v.count--
	}
	return prev
}

// Remove unbinds id and returns the previous value.
func (v *Variables) Remove(id ident.Ident) Value {
	if id < 0 || int(id) >= len(v.slots) {
		return nil
	}
	return v.Set(id, nil)
}

// Len is the number of bound identifiers.
func (v *Variables) Len() int { return v.count }

// Each visits bound identifiers in ascending order until fn returns false.
func (v *Variables) Each(fn func(ident.Ident, Value) bool) {
	for i, val := range v.slots {
		if val == nil {
			continue
		}
		if !fn(ident.Ident(i), val) {
			return
		}
	}
}
