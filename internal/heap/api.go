package heap

import (
	"fmt"
	"math/bits"

	"monolith/consts"
	"monolith/internal/block"
	"monolith/internal/errs"
)

// findFirstFit 从首块按地址升序查找第一个空闲且 Size >= n 的块，找不到返回 NoBlock。
func (h *Heap) findFirstFit(n uint64) uint64 {
	for off := uint64(0); off != consts.NoBlock; {
		hd := block.Read(h.mem, off)
		if hd.Free() && hd.Size >= n {
			return off
		}
		off = hd.Next
	}
	return consts.NoBlock
}

// split 把 off 处的空闲块切成 n 字节的已用块和紧随其后的空闲块。
func (h *Heap) split(off uint64, hd block.Header, n uint64) {
	newOff := off + consts.HeaderSize + n
	rest := block.New(hd.Size-n-consts.HeaderSize, true, hd.Next, off)
	block.Write(h.mem, newOff, rest)
	if hd.HasNext() {
		next := block.Read(h.mem, hd.Next)
		next.Prev = newOff
		block.Write(h.mem, hd.Next, next)
	}
	hd.Size = n
	hd.Next = newOff
	hd.SetFree(false)
	block.Write(h.mem, off, hd)
}

// Alloc 分配 n 字节，返回 payload 偏移。n 为 0、超过容量或没有足够大的空闲块时返回 false。
func (h *Heap) Alloc(n uint64) (Ptr, bool) {
	if h.mem == nil || n == 0 || n > h.capacity {
		return 0, false
	}
	off := h.findFirstFit(n)
	if off == consts.NoBlock {
		h.log.Debug("alloc: out of memory", "size", n)
		return 0, false
	}
	hd := block.Read(h.mem, off)
	if hd.Size-n >= consts.HeaderSize+h.minBlock { // findFirstFit 保证 hd.Size >= n
		h.split(off, hd, n)
	} else {
		// 剩余太小，整块给出去
		hd.SetFree(false)
		block.Write(h.mem, off, hd)
	}
	return Ptr(block.PayloadOf(off)), true
}

// Calloc 分配 count*size 字节并清零。乘法溢出或结果为 0 时返回 false。
func (h *Heap) Calloc(count, size uint64) (Ptr, bool) {
	hi, n := bits.Mul64(count, size)
	if hi != 0 || n == 0 {
		return 0, false
	}
	p, ok := h.Alloc(n)
	if !ok {
		return 0, false
	}
	clear(h.Bytes(p))
	return p, true
}

// Free 释放 p 并与相邻空闲块合并。p 为 0 时什么也不做。
// 非 Debug 模式下不校验 p：传入不是 Alloc 返回的指针或重复释放属于未定义行为。
func (h *Heap) Free(p Ptr) {
	if p == 0 || h.mem == nil {
		return
	}
	if h.debug {
		if err := h.checkLive(p); err != nil {
			h.log.Warn("free: rejected pointer", "ptr", uint64(p), "err", err)
			return
		}
	}
	off := block.HeaderOf(uint64(p))
	hd := block.Read(h.mem, off)
	hd.SetFree(true)
	block.Write(h.mem, off, hd)

	// 向左：找到这一段连续空闲块的最左端
	for hd.HasPrev() {
		prev := block.Read(h.mem, hd.Prev)
		if !prev.Free() {
			break
		}
		off, hd = hd.Prev, prev
	}
	// 向右：依次吞并后继空闲块
	for hd.HasNext() {
		next := block.Read(h.mem, hd.Next)
		if !next.Free() {
			break
		}
		hd.Size += consts.HeaderSize + next.Size
		hd.Next = next.Next
	}
	block.Write(h.mem, off, hd)
	if hd.HasNext() {
		next := block.Read(h.mem, hd.Next)
		next.Prev = off
		block.Write(h.mem, hd.Next, next)
	}
}

// Bytes 返回 p 的 payload 切片，长度为块的实际 Size（可能大于申请值）。
func (h *Heap) Bytes(p Ptr) []byte {
	if p == 0 || h.mem == nil {
		return nil
	}
	hd := block.Read(h.mem, block.HeaderOf(uint64(p)))
	end := uint64(p) + hd.Size
	return h.mem[p:end:end]
}

// Size 返回 p 所在块的 payload 字节数。
func (h *Heap) Size(p Ptr) uint64 {
	if p == 0 || h.mem == nil {
		return 0
	}
	return block.Read(h.mem, block.HeaderOf(uint64(p))).Size
}

// checkLive 确认 p 指向链表中一个已用块的 payload（Debug 模式）。
func (h *Heap) checkLive(p Ptr) error {
	if uint64(p) < consts.HeaderSize || uint64(p) > h.capacity {
		return fmt.Errorf("%w: pointer %d out of region", errs.ErrBadArgument, p)
	}
	target := block.HeaderOf(uint64(p))
	if !block.Fits(h.mem, target) || block.Read(h.mem, target).Magic != consts.Magic {
		return fmt.Errorf("%w: pointer %d has no block header", errs.ErrBadArgument, p)
	}
	found := false
	h.Walk(func(b BlockInfo) bool {
		if b.Offset == target {
			found = !b.Free
			return false
		}
		return b.Offset < target
	})
	if !found {
		return fmt.Errorf("%w: pointer %d is not a live allocation", errs.ErrBadArgument, p)
	}
	return nil
}
