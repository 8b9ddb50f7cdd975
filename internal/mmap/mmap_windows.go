//go:build windows

package mmap

import "errors"

var ErrNotSupported = errors.New("mmap not supported on windows")

func Map(fd uintptr, size int) ([]byte, error) {
	return nil, ErrNotSupported
}

// MapAnon 在 windows 上退化为堆内存。
func MapAnon(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func Sync(data []byte) error {
	return nil
}

func Unmap(data []byte) error {
	return nil
}
