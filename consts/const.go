package consts

// Block Header Const
const (
	Magic      = uint32(0x4D4F4E4F) // 'MONO'
	FlagFree   = uint16(1)
	HeaderSize = 4 + 2 + 2 + 8 + 8 + 8 // 32 bytes（含 reserved）

	NoBlock = ^uint64(0) // next/prev 为空
)

// Region 默认配置
const (
	DefaultCapacity     = 4096
	DefaultMinBlockSize = 32
)
