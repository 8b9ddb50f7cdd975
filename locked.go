package monolith

import "sync"

// Locked 用一把互斥锁包住 Allocator，整个遍历+修改过程都在锁内。
type Locked struct {
	mu sync.Mutex
	a  *Allocator
}

func NewLocked(cfg Config) (*Locked, error) {
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &Locked{a: a}, nil
}

func (l *Locked) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Close()
}

func (l *Locked) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Sync()
}

func (l *Locked) Alloc(n uint64) (Ptr, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Alloc(n)
}

func (l *Locked) Calloc(count, size uint64) (Ptr, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Calloc(count, size)
}

func (l *Locked) Free(p Ptr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.a.Free(p)
}

// Bytes 返回的切片归调用方所有，读写不需要持锁。
func (l *Locked) Bytes(p Ptr) []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Bytes(p)
}

func (l *Locked) Size(p Ptr) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Size(p)
}

func (l *Locked) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.a.Reset()
}

func (l *Locked) Capacity() uint64 { return l.a.Capacity() }

// Walk 在锁内遍历，fn 里不能再调用 l 的方法。
func (l *Locked) Walk(fn func(BlockInfo) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.a.Walk(fn)
}

func (l *Locked) Blocks() []BlockInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Blocks()
}

func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Stats()
}

func (l *Locked) Validate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Validate()
}
