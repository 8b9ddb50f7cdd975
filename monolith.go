// Package monolith 是一个单区域 first-fit 内存分配器：启动时向系统申请一块定长内存，
// 之后所有分配都在这块内存里通过嵌入式双向块链表完成，不会扩容。
//
// Allocator 不是并发安全的；多 goroutine 使用时换成 Locked。
package monolith

import (
	"monolith/internal/errs"
	"monolith/internal/heap"
)

// 对外暴露的 sentinel errors，便于调用方 errors.Is。
var (
	ErrRegion      = errs.ErrRegion
	ErrNoSpace     = errs.ErrNoSpace
	ErrBadArgument = errs.ErrBadArgument
	ErrClosed      = errs.ErrClosed
	ErrCorrupt     = errs.ErrCorrupt
	ErrNotFixed    = errs.ErrNotFixed
)

type (
	// Ptr payload 在区域内的偏移，0 表示空。
	Ptr       = heap.Ptr
	Config    = heap.Config
	BlockInfo = heap.BlockInfo
	Stats     = heap.Stats
)

// DefaultConfig 返回默认配置。
func DefaultConfig() Config { return heap.DefaultConfig() }

type Allocator struct {
	h *heap.Heap
}

// New 申请区域并初始化空闲链表。失败时返回 nil 和包装了 ErrRegion / ErrBadArgument 的错误。
func New(cfg Config) (*Allocator, error) {
	h, err := heap.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Allocator{h: h}, nil
}

// MustNew 同 New，区域申请失败直接 panic。
func MustNew(cfg Config) *Allocator {
	a, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Allocator) Close() error {
	if a == nil || a.h == nil {
		return nil
	}
	return a.h.Close()
}

func (a *Allocator) Sync() error {
	if a == nil || a.h == nil {
		return ErrClosed
	}
	return a.h.Sync()
}

// Alloc 分配 n 字节。n 为 0 或没有足够大的空闲块时返回 (0, false)。
func (a *Allocator) Alloc(n uint64) (Ptr, bool) {
	if a == nil || a.h == nil {
		return 0, false
	}
	return a.h.Alloc(n)
}

// Calloc 分配 count*size 字节并清零。
func (a *Allocator) Calloc(count, size uint64) (Ptr, bool) {
	if a == nil || a.h == nil {
		return 0, false
	}
	return a.h.Calloc(count, size)
}

// Free 释放 p。p 为 0 时什么也不做。
func (a *Allocator) Free(p Ptr) {
	if a == nil || a.h == nil {
		return
	}
	a.h.Free(p)
}

// Bytes 返回 p 的 payload，长度可能大于申请值。
func (a *Allocator) Bytes(p Ptr) []byte {
	if a == nil || a.h == nil {
		return nil
	}
	return a.h.Bytes(p)
}

func (a *Allocator) Size(p Ptr) uint64 {
	if a == nil || a.h == nil {
		return 0
	}
	return a.h.Size(p)
}

// Reset 丢弃全部分配，恢复成初始化后的单个空闲块。
func (a *Allocator) Reset() {
	if a == nil || a.h == nil {
		return
	}
	a.h.Reset()
}

func (a *Allocator) Capacity() uint64 {
	if a == nil || a.h == nil {
		return 0
	}
	return a.h.Capacity()
}

// Walk 按地址升序遍历所有块。
func (a *Allocator) Walk(fn func(BlockInfo) bool) {
	if a == nil || a.h == nil {
		return
	}
	a.h.Walk(fn)
}

func (a *Allocator) Blocks() []BlockInfo {
	if a == nil || a.h == nil {
		return nil
	}
	return a.h.Blocks()
}

func (a *Allocator) Stats() Stats {
	if a == nil || a.h == nil {
		return Stats{}
	}
	return a.h.Stats()
}

// Validate 校验块链表不变式，损坏时返回包装了 ErrCorrupt 的错误。
func (a *Allocator) Validate() error {
	if a == nil || a.h == nil {
		return ErrClosed
	}
	return a.h.Validate()
}
