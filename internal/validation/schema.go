// Package validation はリクエストペイロードの宣言的バリデーションを提供する。
// エンドポイントごとに型付きの入力構造体とルールセットを定義し、失敗時は
// フィールド宣言順に並んだメッセージ一覧を返す。最初のエラーで打ち切らず、
// 失敗したフィールドすべてのメッセージを収集する。
package validation

import (
	"errors"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/eventman/internal/model"
)

// SignUpInput はサインアップ・サインインのリクエストボディ。
type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=50,passwordchars"`
}

// EventInput はイベント作成・編集のリクエストボディ。
// Dateはバリデーション対象外で、解釈できない値はデコード時にnullへ落ちる。
type EventInput struct {
	Title   string          `json:"title" validate:"required,min=3"`
	Content string          `json:"content" validate:"required,min=10"`
	Date    model.EventDate `json:"date" validate:"-"`
}

// messages はフィールドと失敗タグの組をユーザー向けメッセージに対応付ける。
var messages = map[string]map[string]string{
	"SignUpInput.Email": {
		"required": "Email is required",
		"email":    "Please enter a valid email address",
	},
	"SignUpInput.Password": {
		"required":      "Password is required",
		"min":           "Password must be at least 6 characters",
		"max":           "Password must be less than 50 characters",
		"passwordchars": "Password must contain at least one uppercase letter, one lowercase letter, and one number",
	},
	"EventInput.Title": {
		"required": "Title is required",
		"min":      "Title must be at least 3 characters",
	},
	"EventInput.Content": {
		"required": "Content is required",
		"min":      "Content must be at least 10 characters",
	},
}

// Validator はルールセットの検証器を保持する。
type Validator struct {
	validate *validator.Validate
}

// NewValidator はカスタムルールを登録したValidatorを生成する。
func NewValidator() *Validator {
	v := validator.New()

	// passwordchars: 小文字・大文字・数字を各1文字以上含むこと。
	// 記号の要求はしない。
	_ = v.RegisterValidation("passwordchars", func(fl validator.FieldLevel) bool {
		var lower, upper, digit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsLower(r):
				lower = true
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		return lower && upper && digit
	})

	return &Validator{validate: v}
}

// ValidateSignUp はサインアップペイロードを検証する。
// 妥当な場合はnil、失敗時は宣言順のメッセージ一覧を返す。
func (v *Validator) ValidateSignUp(in SignUpInput) []string {
	return v.collect(v.validate.Struct(in))
}

// ValidateEvent はイベントペイロードを検証する。
// 妥当な場合はnil、失敗時は宣言順のメッセージ一覧を返す。
func (v *Validator) ValidateEvent(in EventInput) []string {
	return v.collect(v.validate.Struct(in))
}

// collect はバリデーション結果を宣言順のメッセージ一覧に変換する。
func (v *Validator) collect(err error) []string {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{"Invalid request payload"}
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if byTag, ok := messages[fe.StructNamespace()]; ok {
			if msg, ok := byTag[fe.Tag()]; ok {
				msgs = append(msgs, msg)
				continue
			}
		}
		msgs = append(msgs, fe.Field()+" is invalid")
	}
	return msgs
}
