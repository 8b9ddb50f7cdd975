package logger

import (
	"io"
	"log/slog"
	"os"
)

// L 全局 logger，默认丢弃所有输出。main() 里调用 Init 开启。
var L *slog.Logger = Discard()

// Options 日志初始化选项。
type Options struct {
	Enabled bool       // false 时全部丢弃
	Output  io.Writer  // 默认 os.Stderr
	Level   slog.Level // 默认 LevelInfo
	JSON    bool       // 输出 JSON 而不是 text
}

// Discard 返回一个丢弃所有输出的 logger。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Init 按 opts 重新配置 L。
func Init(opts Options) {
	if !opts.Enabled {
		L = Discard()
		return
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := opts.Level
	if level == 0 {
		level = slog.LevelInfo
	}
	hopts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(out, hopts))
		return
	}
	L = slog.New(slog.NewTextHandler(out, hopts))
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
