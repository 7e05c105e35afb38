package i18n

import (
	"fmt"
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected", "entity" or "id").
type Translator interface {
	Message(code string, data map[string]any) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]any) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です" + detail(data, "expected", "actual")
		case "required":
			return "必須プロパティが不足しています" + detail(data, "property")
		case "too_small":
			return "最小値を下回っています"
		case "too_big":
			return "最大値を超えています"
		case "too_short":
			return "短すぎます"
		case "too_long":
			return "長すぎます"
		case "pattern":
			return "パターンに一致しません"
		case "missing_entity":
			return "エンティティが見つかりません" + detail(data, "entity", "id")
		case "invalid_input":
			if _, ok := data["reason"]; ok {
				return "入力が不正です" + detail(data, "reason")
			}
			return "入力はオブジェクトまたは配列である必要があります"
		case "invalid_reference":
			return "参照が不正です"
		case "unnamed_entity":
			return "識別されたオブジェクトスキーマに名前がありません"
		case "unknown_handler":
			return "カスタムハンドラが登録されていません" + detail(data, "handler")
		case "custom_handler":
			return "カスタムハンドラが失敗しました"
		case "empty_schema":
			return "スキーマが空です"
		case "schema_depth":
			return "スキーマのネストが深すぎます"
		case "invalid_schema":
			return "スキーマが不正です"
		case "internal":
			return "予期しないエラー"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "Invalid type" + detail(data, "expected", "actual")
		case "required":
			return "Required property missing" + detail(data, "property")
		case "too_small":
			return "Number below minimum"
		case "too_big":
			return "Number above maximum"
		case "too_short":
			return "String shorter than minLength"
		case "too_long":
			return "String longer than maxLength"
		case "pattern":
			return "String does not match pattern"
		case "invalid_input":
			if _, ok := data["reason"]; ok {
				return "Invalid input" + detail(data, "reason")
			}
			return "Input must be an object or array"
		case "missing_entity":
			return "Entity not found" + detail(data, "entity", "id")
		case "invalid_reference":
			return "Expected an entity id"
		case "unnamed_entity":
			return "Identified object schema has no name"
		case "unknown_handler":
			return "No custom schema handler registered" + detail(data, "handler")
		case "custom_handler":
			return "Custom schema handler failed"
		case "empty_schema":
			return "Schema has no entries"
		case "schema_depth":
			return "Schema nesting too deep"
		case "invalid_schema":
			return "Invalid schema"
		case "internal":
			return "Unexpected error"
		}
	}
	return code
}

// detail renders the selected keys as " (k=v, ...)" in the given order.
func detail(data map[string]any, keys ...string) string {
	if len(data) == 0 {
		return ""
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := data[k]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]any) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
