package arena

import (
	"fmt"
	"reflect"
	"unsafe"
)

// The garbage collector does not scan arena memory, so only pointer-free
// types may live in it.

// NewValue allocates a zeroed T in the arena.
func NewValue[T any](a *Arena) (Ref, *T, error) {
	if err := storable[T](); err != nil {
		return Nil, nil, err
	}
	var zero T
	ref, b, err := a.Alloc(int(unsafe.Sizeof(zero)))
	if err != nil {
		return Nil, nil, err
	}
	clear(b)
	return ref, (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// Value returns the T stored in a live block allocated by NewValue.
func Value[T any](a *Arena, ref Ref) (*T, error) {
	if err := storable[T](); err != nil {
		return nil, err
	}
	b, err := a.Bytes(ref)
	if err != nil {
		return nil, err
	}
	var zero T
	if uintptr(len(b)) < unsafe.Sizeof(zero) {
		return nil, fmt.Errorf("%w: block holds %d bytes, %T needs %d", ErrBadSize, len(b), zero, unsafe.Sizeof(zero))
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// NewSlice allocates a zeroed slice of n elements of T in the arena.
func NewSlice[T any](a *Arena, n int) (Ref, []T, error) {
	if err := storable[T](); err != nil {
		return Nil, nil, err
	}
	var zero T
	elem := int(unsafe.Sizeof(zero))
	if elem == 0 {
		return Nil, nil, fmt.Errorf("%w: zero-sized element %T", ErrUnsupportedType, zero)
	}
	if n < 0 || (n > 0 && elem > int(^uint(0)>>1)/n) {
		return Nil, nil, fmt.Errorf("%w: %d elements of %T", ErrBadSize, n, zero)
	}
	ref, b, err := a.Alloc(elem * n)
	if err != nil {
		return Nil, nil, err
	}
	clear(b)
	return ref, unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

// Slice returns the elements of T stored in a live block. The length is the
// number of whole elements that fit in the payload.
func Slice[T any](a *Arena, ref Ref) ([]T, error) {
	if err := storable[T](); err != nil {
		return nil, err
	}
	var zero T
	elem := int(unsafe.Sizeof(zero))
	if elem == 0 {
		return nil, fmt.Errorf("%w: zero-sized element %T", ErrUnsupportedType, zero)
	}
	b, err := a.Bytes(ref)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), len(b)/elem), nil
}

func storable[T any]() error {
	t := reflect.TypeFor[T]()
	if t.Align() > WordSize {
		return fmt.Errorf("%w: %v needs %d-byte alignment", ErrUnsupportedType, t, t.Align())
	}
	if !pointerFree(t) {
		return fmt.Errorf("%w: %v contains pointers", ErrUnsupportedType, t)
	}
	return nil
}

func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
