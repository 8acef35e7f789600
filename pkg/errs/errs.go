package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationKind 输入校验失败原因
type ValidationKind string

const (
	MissingOrWrongType ValidationKind = "missing_or_wrong_type"
	TooShort           ValidationKind = "too_short"
	TooLong            ValidationKind = "too_long"
	SanitizedTooShort  ValidationKind = "sanitized_too_short"
)

// ValidationError 校验错误，Message 对用户可见
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidation 创建校验错误
func NewValidation(kind ValidationKind, message string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message}
}

// SynthesisKind 综合阶段上游失败分类
type SynthesisKind string

const (
	RateLimited     SynthesisKind = "rate_limited"
	CapacityReached SynthesisKind = "capacity_reached"
	Timeout         SynthesisKind = "timeout"
	SynthesisFailed SynthesisKind = "synthesis_failed"
)

// SynthesisError 综合阶段错误，内部细节仅用于服务端日志
type SynthesisError struct {
	Kind SynthesisKind
	Err  error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("synthesis %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("synthesis %s", e.Kind)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// NewSynthesis 创建综合阶段错误
func NewSynthesis(kind SynthesisKind, err error) *SynthesisError {
	return &SynthesisError{Kind: kind, Err: err}
}

// ConfigurationError 凭证缺失。Missing 只进服务端日志，绝不出现在响应里
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s is not configured", e.Missing)
}

// NewConfiguration 创建配置错误
func NewConfiguration(missing string) *ConfigurationError {
	return &ConfigurationError{Missing: missing}
}

// 对外固定话术，任何情况下不得携带上游诊断信息
const (
	msgUnavailable = "Service temporarily unavailable. Please try again later."
	msgRateLimited = "Too many requests. Please try again in a moment."
	msgCapacity    = "Service capacity reached. Please try again later."
	msgTimeout     = "Request timed out. Please try again."
	msgGeneric     = "Analysis request failed. Please try again."
)

// Translate 把内部错误映射为 (HTTP 状态码, 安全的用户提示)。
// 校验错误的消息本身是安全且具体的，原样放行；其余一律替换为固定话术。
func Translate(err error) (int, string) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Message
	}

	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return http.StatusInternalServerError, msgUnavailable
	}

	var se *SynthesisError
	if errors.As(err, &se) {
		switch se.Kind {
		case RateLimited:
			return http.StatusTooManyRequests, msgRateLimited
		case CapacityReached:
			return http.StatusPaymentRequired, msgCapacity
		case Timeout:
			return http.StatusInternalServerError, msgTimeout
		default:
			return http.StatusInternalServerError, msgGeneric
		}
	}

	return http.StatusInternalServerError, msgGeneric
}
