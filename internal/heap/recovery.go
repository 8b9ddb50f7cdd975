package heap

import "fmt"

// Recover 沿用文件映射中已有的块链表：整条链表校验通过才接管，否则返回错误，由调用方重新初始化。
func (h *Heap) Recover() error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("recover: %w", err)
	}
	s := h.Stats()
	h.log.Debug("heap recovered",
		"path", h.reg.Path(),
		"blocks", s.Blocks,
		"used_blocks", s.UsedBlocks,
		"free_bytes", s.FreeBytes)
	return nil
}
