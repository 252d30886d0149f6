package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 校验错误：INVALID_INPUT（缺少用户/影片标识，直接返回调用方）
//   - 资源缺失：NOT_FOUND（参照影片不存在，必须透传、不得被兜底掩盖）
//   - 上游失败：UNAVAILABLE（行为/影片/候选检索失败，本地降级为热门兜底）
//   - 兜底耗尽：INTERNAL_ERROR（兜底路径自身也失败）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "engine", "cache"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 上游不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误/兜底耗尽
)

// 模块名称常量
const (
	ModuleStore  = "store"  // 存储模块
	ModuleEngine = "engine" // 编排模块
	ModuleCache  = "cache"  // 缓存模块
)

func codeIs(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND。
func IsNotFound(err error) bool {
	return codeIs(err, ErrorCodeNotFound)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT。
func IsInvalidInput(err error) bool {
	return codeIs(err, ErrorCodeInvalidInput)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE。
func IsUnavailable(err error) bool {
	return codeIs(err, ErrorCodeUnavailable)
}

// IsInternal 检查错误是否为 INTERNAL_ERROR。
func IsInternal(err error) bool {
	return codeIs(err, ErrorCodeInternalError)
}
