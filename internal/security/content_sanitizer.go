// Package security はコンテンツのサニタイズを提供する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizer はユーザー入力のイベントtitle・contentから
// マークアップを除去する。保存前に必ず通すことで、格納値が
// プレーンテキストであることを保証する。
type ContentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerを生成する。
// StrictPolicyはすべてのHTML要素と属性を除去する。
func NewContentSanitizer() *ContentSanitizer {
	return &ContentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はマークアップを除去したプレーンテキストを返す。
// bluemondayはテキストをエスケープして返すため、実体参照を
// 元の文字に戻してから前後の空白を刈り取る。
func (s *ContentSanitizer) Sanitize(input string) string {
	cleaned := s.policy.Sanitize(input)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
