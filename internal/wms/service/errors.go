package service

import "errors"

// 错误分类：处理器据此映射HTTP状态码，调用方只收到可区分的
// 错误种类和可读信息，底层存储错误统一向上表现为未分类错误
var (
	// ErrValidation 入参缺失或非法，未发生任何写入
	ErrValidation = errors.New("validation failed")
	// ErrNotFound 实体不存在或不属于该租户
	ErrNotFound = errors.New("not found")
	// ErrConflict 当前状态下操作在语义上不可执行
	ErrConflict = errors.New("conflict")
	// ErrReference 关联实体（物料/模板等）无法解析
	ErrReference = errors.New("invalid reference")
)
