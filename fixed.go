package monolith

import "monolith/internal/fixed"

// FixedAllocator 能做 NewFixed/LoadFixed/StoreFixed 的分配器，Allocator 和 Locked 都满足。
type FixedAllocator = fixed.Allocator

// NewFixed 为无指针类型 T 分配内存并写入 *v。T 含指针时返回 ErrNotFixed，空间不足返回 ErrNoSpace。
func NewFixed[T any](a FixedAllocator, v *T) (Ptr, error) {
	return fixed.NewFixed(a, v)
}

// StoreFixed 将 *v 覆盖写到 p。
func StoreFixed[T any](a FixedAllocator, p Ptr, v *T) error {
	return fixed.StoreFixed(a, p, v)
}

// LoadFixed 从 p 读出并反序列化为 *T。
func LoadFixed[T any](a FixedAllocator, p Ptr) (*T, error) {
	return fixed.LoadFixed[T](a, p)
}
