package region

import (
	"errors"
	"fmt"
	"os"

	"monolith/internal/mmap"
)

// syncData 测试里替换以模拟刷盘失败。
var syncData = mmap.Sync

// Region 单块定长内存：匿名映射或文件共享映射，整个生命周期内不扩容。
type Region struct {
	path     string
	f        *os.File
	data     []byte
	reopened bool
}

// Path 返回后备文件路径，匿名映射时为空。
func (r *Region) Path() string { return r.path }

// Bytes 返回映射切片（供 heap 读写），Close 后为 nil。
func (r *Region) Bytes() []byte { return r.data }

// Reopened 表示后备文件在打开前已存在且大小一致（Recover 用）。
func (r *Region) Reopened() bool { return r.reopened }

// Len 返回映射长度，data 为 nil 时返回 0。
func (r *Region) Len() int {
	if r.data == nil {
		return 0
	}
	return len(r.data)
}

// Open 申请 size 字节的区域。path 为空时使用匿名私有映射，
// 否则创建（或打开已存在的）文件并做共享映射。
func Open(path string, size int64) (*Region, error) {
	if size <= 0 || int64(int(size)) != size {
		return nil, fmt.Errorf("region size %d out of range", size)
	}
	if path == "" {
		data, err := mmap.MapAnon(int(size))
		if err != nil {
			return nil, fmt.Errorf("mmap anonymous %d bytes: %w", size, err)
		}
		return &Region{data: data}, nil
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	reopened := false
	switch st.Size() {
	case 0:
		// 新文件才截断
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, err
		}
	case size:
		reopened = true
	default:
		_ = f.Close()
		return nil, fmt.Errorf("region size mismatch: %s has %d bytes, want %d", path, st.Size(), size)
	}
	data, err := mmap.Map(f.Fd(), int(size))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &Region{
		path:     path,
		f:        f,
		data:     data,
		reopened: reopened,
	}, nil
}

// Sync 把文件映射刷盘；匿名映射无需刷盘。
func (r *Region) Sync() error {
	if r.data == nil || r.f == nil {
		return nil
	}
	return syncData(r.data)
}

// Close 刷盘、解除映射、关闭文件。刷盘失败仍会解除映射并关闭文件，错误合并返回。重复 Close 无副作用。
func (r *Region) Close() error {
	var errList []error
	if r.data != nil {
		if r.f != nil {
			if err := syncData(r.data); err != nil {
				errList = append(errList, fmt.Errorf("msync: %w", err))
			}
		}
		if err := mmap.Unmap(r.data); err != nil {
			errList = append(errList, fmt.Errorf("munmap: %w", err))
		}
		r.data = nil
	}
	if r.f != nil {
		if err := r.f.Close(); err != nil {
			errList = append(errList, err)
		}
		r.f = nil
	}
	return errors.Join(errList...)
}
