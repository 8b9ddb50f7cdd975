package heap

import (
	"fmt"
	"log/slog"

	"monolith/consts"
	"monolith/internal/block"
	"monolith/internal/errs"
	"monolith/internal/logger"
	"monolith/internal/region"
)

// Ptr payload 在区域内的偏移。0 表示空：payload 至少位于一个块头之后。
type Ptr uint64

// Config 分配器配置。零值字段取默认值。
type Config struct {
	Capacity     uint64 // 区域总字节数（含块头），默认 4096
	MinBlockSize uint64 // 拆分后剩余块的最小 payload，默认 32
	Path         string // 非空时使用文件共享映射
	Recover      bool   // 文件已存在且链表合法时沿用旧链表
	Debug        bool   // Free 前校验指针
	Logger       *slog.Logger
}

// DefaultConfig 返回默认配置：4096 字节匿名区域，最小剩余块 32 字节。
func DefaultConfig() Config {
	return Config{
		Capacity:     consts.DefaultCapacity,
		MinBlockSize: consts.DefaultMinBlockSize,
	}
}

func (c Config) withDefaults() Config {
	if c.Capacity == 0 {
		c.Capacity = consts.DefaultCapacity
	}
	if c.MinBlockSize == 0 {
		c.MinBlockSize = consts.DefaultMinBlockSize
	}
	if c.Logger == nil {
		c.Logger = logger.L
	}
	return c
}

// Heap 单区域 first-fit 分配器。非并发安全。
type Heap struct {
	reg      *region.Region
	mem      []byte
	capacity uint64
	minBlock uint64
	debug    bool
	log      *slog.Logger
}

// New 申请区域并建立初始空闲链表。区域申请失败时返回包装了 ErrRegion 的错误，不返回可用实例。
func New(cfg Config) (*Heap, error) {
	cfg = cfg.withDefaults()
	if cfg.Capacity < consts.HeaderSize || cfg.MinBlockSize > cfg.Capacity-consts.HeaderSize {
		return nil, fmt.Errorf("%w: capacity %d smaller than header %d + min block %d",
			errs.ErrBadArgument, cfg.Capacity, consts.HeaderSize, cfg.MinBlockSize)
	}
	if cfg.Capacity >= consts.NoBlock>>1 {
		return nil, fmt.Errorf("%w: capacity %d too large", errs.ErrBadArgument, cfg.Capacity)
	}
	reg, err := region.Open(cfg.Path, int64(cfg.Capacity))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrRegion, err)
	}
	h := &Heap{
		reg:      reg,
		mem:      reg.Bytes(),
		capacity: cfg.Capacity,
		minBlock: cfg.MinBlockSize,
		debug:    cfg.Debug,
		log:      cfg.Logger,
	}
	if cfg.Recover && reg.Reopened() {
		err := h.Recover()
		if err == nil {
			return h, nil
		}
		h.log.Warn("recover block list failed, reinitializing", "path", cfg.Path, "err", err)
	}
	h.init()
	h.log.Debug("heap initialized", "capacity", h.capacity, "min_block", h.minBlock, "path", cfg.Path)
	return h, nil
}

// init 在区域起始处写入一个覆盖整个区域的空闲块。
func (h *Heap) init() {
	block.Write(h.mem, 0, block.New(h.capacity-consts.HeaderSize, true, consts.NoBlock, consts.NoBlock))
}

// Reset 重新初始化区域，丢弃所有已有分配。
func (h *Heap) Reset() {
	if h.mem == nil {
		return
	}
	h.init()
}

func (h *Heap) Capacity() uint64     { return h.capacity }
func (h *Heap) MinBlockSize() uint64 { return h.minBlock }

// Closed 返回区域是否已释放。
func (h *Heap) Closed() bool { return h.mem == nil }

// Sync 文件映射时刷盘。
func (h *Heap) Sync() error {
	if h.mem == nil {
		return errs.ErrClosed
	}
	return h.reg.Sync()
}

// Close 释放区域。之后的分配全部失败。
func (h *Heap) Close() error {
	if h.mem == nil {
		return nil
	}
	// Region.Close 出错时也已释放映射和文件
	err := h.reg.Close()
	h.mem = nil
	return err
}
