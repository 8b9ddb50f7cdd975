package monolith

import (
	"math/rand"
	"testing"
)

func mustOpenBench(b *testing.B, capacity uint64) *Allocator {
	b.Helper()
	a, err := New(Config{Capacity: capacity})
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	return a
}

// warmup 先占住 n 个小块，让 first-fit 有一段链表要走。
func warmup(b *testing.B, a *Allocator, n int) []Ptr {
	b.Helper()
	ps := make([]Ptr, 0, n)
	for i := 0; i < n; i++ {
		p, ok := a.Alloc(48)
		if !ok {
			b.Fatalf("warmup alloc %d failed", i)
		}
		ps = append(ps, p)
	}
	return ps
}

func BenchmarkAllocFree(b *testing.B) {
	a := mustOpenBench(b, 1<<20)
	defer a.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, _ := a.Alloc(64)
		a.Free(p)
	}
}

func BenchmarkAllocFreeFragmented(b *testing.B) {
	a := mustOpenBench(b, 1<<20)
	defer a.Close()
	ps := warmup(b, a, 1000)
	for i := 0; i < len(ps); i += 2 {
		a.Free(ps[i]) // 每隔一个释放，留下 500 个 48 字节的洞
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, _ := a.Alloc(64) // 洞都放不下，必须走到链表尾
		a.Free(p)
	}
}

func BenchmarkMixed(b *testing.B) {
	a := mustOpenBench(b, 4<<20)
	defer a.Close()
	r := rand.New(rand.NewSource(1))
	live := make([]Ptr, 0, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if len(live) > 0 && (len(live) >= cap(live) || r.Intn(2) == 0) {
			j := r.Intn(len(live))
			a.Free(live[j])
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}
		if p, ok := a.Alloc(uint64(16 + r.Intn(1024))); ok {
			live = append(live, p)
		}
	}
}

func BenchmarkLockedParallel(b *testing.B) {
	l, err := NewLocked(Config{Capacity: 1 << 20})
	if err != nil {
		b.Fatalf("NewLocked: %v", err)
	}
	defer l.Close()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			p, _ := l.Alloc(64)
			l.Free(p)
		}
	})
}
