package heap

import (
	"fmt"

	"monolith/consts"
	"monolith/internal/block"
	"monolith/internal/errs"
)

// BlockInfo 链表中一个块的快照。
type BlockInfo struct {
	Offset uint64 `json:"offset"` // 块头偏移
	Size   uint64 `json:"size"`   // payload 字节数
	Free   bool   `json:"free"`
}

// Payload 返回块的 payload 指针。
func (b BlockInfo) Payload() Ptr { return Ptr(block.PayloadOf(b.Offset)) }

// Stats 链表统计。
type Stats struct {
	Capacity    uint64 `json:"capacity"`
	Blocks      int    `json:"blocks"`
	FreeBlocks  int    `json:"free_blocks"`
	UsedBlocks  int    `json:"used_blocks"`
	FreeBytes   uint64 `json:"free_bytes"` // 空闲块 payload 之和
	UsedBytes   uint64 `json:"used_bytes"` // 已用块 payload 之和
	Overhead    uint64 `json:"overhead"`   // 块头总字节数
	LargestFree uint64 `json:"largest_free"`
}

// maxBlocks 区域最多能容纳的块数，遍历时防止链表成环。
func (h *Heap) maxBlocks() uint64 { return h.capacity/consts.HeaderSize + 1 }

// Walk 按地址升序遍历所有块，fn 返回 false 时停止。不校验链表，损坏时以 maxBlocks 截断。
func (h *Heap) Walk(fn func(BlockInfo) bool) {
	if h.mem == nil {
		return
	}
	off := uint64(0)
	for i := uint64(0); i < h.maxBlocks() && off != consts.NoBlock; i++ {
		if !block.Fits(h.mem, off) {
			return
		}
		hd := block.Read(h.mem, off)
		if !fn(BlockInfo{Offset: off, Size: hd.Size, Free: hd.Free()}) {
			return
		}
		off = hd.Next
	}
}

// Blocks 返回所有块的快照。
func (h *Heap) Blocks() []BlockInfo {
	var out []BlockInfo
	h.Walk(func(b BlockInfo) bool {
		out = append(out, b)
		return true
	})
	return out
}

// Stats 汇总当前链表。
func (h *Heap) Stats() Stats {
	s := Stats{Capacity: h.capacity}
	h.Walk(func(b BlockInfo) bool {
		s.Blocks++
		s.Overhead += consts.HeaderSize
		if b.Free {
			s.FreeBlocks++
			s.FreeBytes += b.Size
			if b.Size > s.LargestFree {
				s.LargestFree = b.Size
			}
		} else {
			s.UsedBlocks++
			s.UsedBytes += b.Size
		}
		return true
	})
	return s
}

// Validate 校验链表不变式：magic、前后链接、块首尾相接铺满区域、没有相邻空闲块。
func (h *Heap) Validate() error {
	if h.mem == nil {
		return errs.ErrClosed
	}
	var (
		off      = uint64(0)
		prev     = consts.NoBlock
		prevFree = false
		total    = uint64(0)
	)
	for i := uint64(0); ; i++ {
		if i >= h.maxBlocks() {
			return fmt.Errorf("%w: more than %d blocks, list loops", errs.ErrCorrupt, h.maxBlocks())
		}
		if !block.Fits(h.mem, off) {
			return fmt.Errorf("%w: block at %d: header out of region", errs.ErrCorrupt, off)
		}
		hd := block.Read(h.mem, off)
		if hd.Magic != consts.Magic {
			return fmt.Errorf("%w: block at %d: bad magic %#x", errs.ErrCorrupt, off, hd.Magic)
		}
		if hd.Prev != prev {
			return fmt.Errorf("%w: block at %d: prev %d, want %d", errs.ErrCorrupt, off, hd.Prev, prev)
		}
		if hd.Size > h.capacity-off-consts.HeaderSize {
			return fmt.Errorf("%w: block at %d: size %d overruns region", errs.ErrCorrupt, off, hd.Size)
		}
		if prevFree && hd.Free() {
			return fmt.Errorf("%w: block at %d: adjacent free blocks", errs.ErrCorrupt, off)
		}
		total += consts.HeaderSize + hd.Size
		end := hd.End(off)
		if !hd.HasNext() {
			if end != h.capacity || total != h.capacity {
				return fmt.Errorf("%w: blocks cover %d of %d bytes", errs.ErrCorrupt, total, h.capacity)
			}
			return nil
		}
		if hd.Next != end {
			return fmt.Errorf("%w: block at %d: next %d, want %d", errs.ErrCorrupt, off, hd.Next, end)
		}
		prev, prevFree, off = off, hd.Free(), hd.Next
	}
}
