package fixed

import (
	"fmt"
	"reflect"
	"unsafe"

	"monolith/internal/errs"
	"monolith/internal/heap"
)

// Allocator 供 NewFixed/LoadFixed/StoreFixed 使用的分配接口。
type Allocator interface {
	Alloc(n uint64) (heap.Ptr, bool)
	Bytes(p heap.Ptr) []byte
}

func assertNoPointers[T any]() error {
	var zero T
	return typeNoPointers(reflect.TypeOf(zero))
}

func typeNoPointers(t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("%w: nil interface type", errs.ErrNotFixed)
	}
	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return nil
	case reflect.Array:
		return typeNoPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if err := typeNoPointers(t.Field(i).Type); err != nil {
				return fmt.Errorf("field %s: %w", t.Field(i).Name, err)
			}
		}
		return nil
	case reflect.String, reflect.Slice, reflect.Map, reflect.Pointer,
		reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return fmt.Errorf("%w: type %s contains pointer-like data", errs.ErrNotFixed, t.String())
	default:
		return fmt.Errorf("%w: unsupported kind %s (%s)", errs.ErrNotFixed, t.Kind(), t.String())
	}
}

func bytesViewOf[T any](p *T) []byte {
	n := int(unsafe.Sizeof(*p))
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

// NewFixed 为无指针类型 T 分配一块内存并拷贝 v 进去。
func NewFixed[T any](a Allocator, v *T) (heap.Ptr, error) {
	if err := assertNoPointers[T](); err != nil {
		return 0, err
	}
	n := uint64(unsafe.Sizeof(*v))
	if n == 0 {
		return 0, fmt.Errorf("%w: zero-sized type", errs.ErrBadArgument)
	}
	p, ok := a.Alloc(n)
	if !ok {
		return 0, errs.ErrNoSpace
	}
	copy(a.Bytes(p), bytesViewOf(v))
	return p, nil
}

// StoreFixed 把 v 覆盖写到 p。
func StoreFixed[T any](a Allocator, p heap.Ptr, v *T) error {
	if err := assertNoPointers[T](); err != nil {
		return err
	}
	b := a.Bytes(p)
	src := bytesViewOf(v)
	if len(b) < len(src) {
		return fmt.Errorf("%w: block has %d bytes, %T needs %d", errs.ErrBadArgument, len(b), *v, len(src))
	}
	copy(b, src)
	return nil
}

// LoadFixed 从 p 读出并反序列化为 *T。
func LoadFixed[T any](a Allocator, p heap.Ptr) (*T, error) {
	if err := assertNoPointers[T](); err != nil {
		return nil, err
	}
	out := new(T)
	dst := bytesViewOf(out)
	b := a.Bytes(p)
	if len(b) < len(dst) {
		return nil, fmt.Errorf("size mismatch: got=%d want=%d", len(b), len(dst))
	}
	copy(dst, b)
	return out, nil
}
