// Package block 是块头的编解码层，所有 header 偏移运算只在这里发生。
package block

import (
	"encoding/binary"

	"monolith/consts"
)

// Header 块头（magic/flags/size/next/prev），紧跟其后的是 Size 字节的 payload。
type Header struct {
	Magic uint32
	Flags uint16
	_     uint16
	Size  uint64
	Next  uint64
	Prev  uint64
}

// Free 返回块是否空闲。
func (h Header) Free() bool { return h.Flags&consts.FlagFree != 0 }

// SetFree 设置空闲标记。
func (h *Header) SetFree(free bool) {
	if free {
		h.Flags |= consts.FlagFree
	} else {
		h.Flags &^= consts.FlagFree
	}
}

// HasNext / HasPrev 判断链接是否存在。
func (h Header) HasNext() bool { return h.Next != consts.NoBlock }
func (h Header) HasPrev() bool { return h.Prev != consts.NoBlock }

// End 返回块（含 header）在区域内的结束偏移。
func (h Header) End(off uint64) uint64 { return off + consts.HeaderSize + h.Size }

// New 构造一个带 magic 的块头。
func New(size uint64, free bool, next, prev uint64) Header {
	h := Header{Magic: consts.Magic, Size: size, Next: next, Prev: prev}
	h.SetFree(free)
	return h
}

// Decode 从 data 解码一个块头。
func Decode(data []byte) Header {
	return Header{
		Magic: binary.LittleEndian.Uint32(data[0:4]),
		Flags: binary.LittleEndian.Uint16(data[4:6]),
		Size:  binary.LittleEndian.Uint64(data[8:16]),
		Next:  binary.LittleEndian.Uint64(data[16:24]),
		Prev:  binary.LittleEndian.Uint64(data[24:32]),
	}
}

// Encode 将 h 编码到 b（至少 HeaderSize 字节）。
func Encode(b []byte, h Header) {
	binary.LittleEndian.PutUint32(b[0:4], h.Magic)
	binary.LittleEndian.PutUint16(b[4:6], h.Flags)
	binary.LittleEndian.PutUint16(b[6:8], 0)
	binary.LittleEndian.PutUint64(b[8:16], h.Size)
	binary.LittleEndian.PutUint64(b[16:24], h.Next)
	binary.LittleEndian.PutUint64(b[24:32], h.Prev)
}

// Fits 判断 off 处能否放下一个完整块头。
func Fits(region []byte, off uint64) bool {
	return off <= uint64(len(region)) && uint64(len(region))-off >= consts.HeaderSize
}

// Read 读取 off 处的块头，越界时 panic（切片边界检查）。
func Read(region []byte, off uint64) Header {
	return Decode(region[off : off+consts.HeaderSize])
}

// Write 把 h 写到 off 处。
func Write(region []byte, off uint64, h Header) {
	Encode(region[off:off+consts.HeaderSize], h)
}

// HeaderOf 由 payload 偏移反推块头偏移。调用方保证 payload 来自 Alloc。
func HeaderOf(payload uint64) uint64 { return payload - consts.HeaderSize }

// PayloadOf 由块头偏移得到 payload 偏移。
func PayloadOf(off uint64) uint64 { return off + consts.HeaderSize }
