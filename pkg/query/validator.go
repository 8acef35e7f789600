package query

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/iWorld-y/clawcast/pkg/errs"
)

// 查询长度边界（按 rune 计）
const (
	MinQueryLength = 5
	MaxQueryLength = 500
)

// 提示词注入的覆盖指令模式，如 "ignore previous instructions"
var injectionPattern = regexp.MustCompile(`(?i)\b(ignore|disregard)\s+(previous|above|all|instructions)`)

// HTML/脚本类危险字符
var unsafeChars = regexp.MustCompile("[<>\"'`]")

// 控制字符（0-31 及 127）
var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)

// Validate 校验并清洗原始查询。纯函数，不产生任何副作用。
// 成功时返回清洗后的查询串，失败时返回 *errs.ValidationError。
func Validate(input any) (string, error) {
	raw, ok := input.(string)
	if !ok || raw == "" {
		return "", errs.NewValidation(errs.MissingOrWrongType, "Query is required and must be a string")
	}

	trimmed := strings.TrimSpace(raw)

	if utf8.RuneCountInString(trimmed) < MinQueryLength {
		return "", errs.NewValidation(errs.TooShort,
			fmt.Sprintf("Query must be at least %d characters", MinQueryLength))
	}
	if utf8.RuneCountInString(trimmed) > MaxQueryLength {
		return "", errs.NewValidation(errs.TooLong,
			fmt.Sprintf("Query must not exceed %d characters", MaxQueryLength))
	}

	sanitized := Sanitize(trimmed)

	if utf8.RuneCountInString(sanitized) < MinQueryLength {
		return "", errs.NewValidation(errs.SanitizedTooShort, "Query contains too many invalid characters")
	}

	return sanitized, nil
}

// Sanitize 反复清洗直到不动点。单轮删除可能把残片拼成新的注入短语
// （如 "ignore ignore previous instructions"），所以必须迭代到稳定；
// 每轮只会删字符，循环必然终止。
func Sanitize(s string) string {
	for {
		next := sanitizeOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

// sanitizeOnce 按固定顺序清洗一轮：危险字符 -> 注入短语 -> 控制字符 -> 去首尾空白
func sanitizeOnce(s string) string {
	s = unsafeChars.ReplaceAllString(s, "")
	s = injectionPattern.ReplaceAllString(s, "")
	s = controlChars.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
