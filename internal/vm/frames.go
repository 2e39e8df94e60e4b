package vm

import (
	"strconv"

	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/token"
	"github.com/funvibe/hug/internal/value"
)

// Frame is one active interpreted call.
type Frame struct {
	Function *value.Function
	// Return is the main-sequence index of the calling statement.
	Return int
	Locals *value.Variables

	result value.Value
}

func (vm *VM) currentFrame() *Frame {
	if len(vm.frames) == 0 {
		return nil
	}
	return vm.frames[len(vm.frames)-1]
}

// scopes lists the stores a name is looked up in, innermost first.
func (vm *VM) scopes() []*value.Variables {
	if f := vm.currentFrame(); f != nil {
		return []*value.Variables{f.Locals, vm.variables}
	}
	return []*value.Variables{vm.variables}
}

// callInterpreted runs fn's body to its return and resumes at the caller.
func (vm *VM) callInterpreted(fn *value.Function, args []value.Value, pos token.Pos) (value.Value, error) {
	if len(vm.frames) >= MaxFrameCount {
		return nil, diagnostics.NewError(diagnostics.ErrR005, pos, MaxFrameCount)
	}
	if len(args) > len(fn.Arguments) || len(args) < fn.Required() {
		return nil, diagnostics.NewError(diagnostics.ErrR004, pos, fn.Name, arity(fn), len(args))
	}

	frame := &Frame{Function: fn, Return: vm.pointer, Locals: value.NewVariables()}
	for i, param := range fn.Arguments {
		arg := param.Default
		if i < len(args) {
			arg = args[i]
		}
		vm.bind(frame.Locals, param.Ident, arg)
	}

	file := vm.file
	vm.frames = append(vm.frames, frame)
	vm.pointer = fn.Address
	vm.pause = false
	if err := vm.loop(len(vm.frames)); err != nil {
		return nil, err
	}
	vm.pointer = frame.Return
	vm.pause = false
	vm.file = file

	if frame.result == nil {
		return value.Void{}, nil
	}
	return frame.result, nil
}

// popFrame leaves the current call with result.
func (vm *VM) popFrame(result value.Value) {
	frame := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	frame.result = result
	vm.releaseAll(frame.Locals, nil)
}

// unwind drops every open frame after a failure, leaving the pointer at the
// top-level statement that started the calls.
func (vm *VM) unwind() {
	if len(vm.frames) == 0 {
		return
	}
	vm.pointer = vm.frames[0].Return
	for len(vm.frames) > 0 {
		vm.popFrame(nil)
	}
	vm.pause = false
}

func arity(fn *value.Function) string {
	required, total := fn.Required(), len(fn.Arguments)
	if required == total {
		return strconv.Itoa(total)
	}
	return strconv.Itoa(required) + " to " + strconv.Itoa(total)
}
