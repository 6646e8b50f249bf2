// Package model はドメインモデルを定義する。
package model

// APIError は統一エラーフォーマットを表す。
// すべての失敗は {statusCode, statusMessage, data} の三つ組として
// クライアントに返る。
type APIError struct {
	StatusCode    int    `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	Data          any    `json:"data"`
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return e.StatusMessage
}

// ValidationData はバリデーション失敗時のdataペイロード。
// メッセージはルール宣言順に並ぶ。
type ValidationData struct {
	ErrorsArray []string `json:"errorsArray"`
}

// NewUnauthorizedError はセッションなし・無効セッションの401エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		StatusCode:    401,
		StatusMessage: "Unauthorized",
	}
}

// NewValidationError はフィールドエラーメッセージ一覧を持つ400エラーを生成する。
// すべてのエンドポイントで data.errorsArray の形に統一する。
func NewValidationError(messages []string) *APIError {
	return &APIError{
		StatusCode:    400,
		StatusMessage: "Validation failed",
		Data:          ValidationData{ErrorsArray: messages},
	}
}

// NewUserExistsError はメールアドレス重複時の400エラーを生成する。
func NewUserExistsError() *APIError {
	return &APIError{
		StatusCode:    400,
		StatusMessage: "User already exists",
	}
}

// NewNoUserError は未登録メールアドレスでのサインイン失敗を表す401エラーを生成する。
// パスワード不一致とは区別可能なメッセージを維持する。
func NewNoUserError() *APIError {
	return &APIError{
		StatusCode:    401,
		StatusMessage: "There is no user with this email",
	}
}

// NewInvalidCredentialsError はパスワード不一致の401エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		StatusCode:    401,
		StatusMessage: "Invalid email or password",
	}
}

// NewEventNotFoundError は存在しない・所有していないイベントへのアクセスを
// 表す404エラーを生成する。メッセージは意図的に曖昧にし、他ユーザーの
// レコードの存在を確認させない。
func NewEventNotFoundError() *APIError {
	return &APIError{
		StatusCode:    404,
		StatusMessage: "Event not found or you are not the owner",
	}
}

// NewEventIDRequiredError はイベントIDが欠落したリクエストの400エラーを生成する。
func NewEventIDRequiredError() *APIError {
	return &APIError{
		StatusCode:    400,
		StatusMessage: "Event ID required",
	}
}

// NewBadRequestError はリクエストボディが解析できない場合の400エラーを生成する。
func NewBadRequestError(message string) *APIError {
	return &APIError{
		StatusCode:    400,
		StatusMessage: message,
	}
}
