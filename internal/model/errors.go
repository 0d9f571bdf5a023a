// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, project, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeSessionIDRequired  = "SESSION_ID_REQUIRED"
	ErrCodeAuthExchangeFailed = "AUTH_EXCHANGE_FAILED"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeProjectNotFound    = "PROJECT_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidMonth       = "INVALID_MONTH"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeInvalidLink        = "INVALID_LINK"
	ErrCodeInvalidCursor      = "INVALID_CURSOR"
)

// NewSessionIDRequiredError は外部セッションID未指定エラーを生成する。
func NewSessionIDRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionIDRequired,
		Message:  "X-Session-IDヘッダーが指定されていません。",
		Category: "auth",
		Action:   "認証プロバイダーから発行されたセッションIDをX-Session-IDヘッダーに指定してください。",
	}
}

// NewAuthExchangeFailedError は外部ID交換の失敗エラーを生成する。
// ネットワークエラー、非200応答、不正なペイロードはすべてこのエラーに正規化される。
func NewAuthExchangeFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthExchangeFailed,
		Message:  "認証プロバイダーとのセッション交換に失敗しました。",
		Category: "auth",
		Action:   "ログインをやり直してください。",
	}
}

// NewUnauthenticatedError は未認証エラーを生成する。
// セッショントークンの欠落、無効、期限切れのいずれも区別しない。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewProjectNotFoundError はプロジェクト未検出エラーを生成する。
// 存在しない場合と他ユーザー所有の場合で同一のエラーを返す（情報秘匿）。
func NewProjectNotFoundError(projectID string) *APIError {
	return &APIError{
		Code:     ErrCodeProjectNotFound,
		Message:  fmt.Sprintf("指定されたプロジェクトが見つかりません: %s", projectID),
		Category: "project",
		Action:   "プロジェクトIDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewMissingFieldError は必須フィールド欠落エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("必須フィールドが指定されていません: %s", field),
		Category: "validation",
		Action:   fmt.Sprintf("%s を指定してください。", field),
	}
}

// NewInvalidMonthError は無効な月指定エラーを生成する。
func NewInvalidMonthError(month int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMonth,
		Message:  fmt.Sprintf("無効な月です: %d", month),
		Category: "validation",
		Action:   "月は1から3の範囲で指定してください。",
	}
}

// NewInvalidStatusError は無効なステータス値エラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なステータスです: %s", status),
		Category: "validation",
		Action:   "ステータスには planning、in-progress、completed、paused のいずれかを指定してください。",
	}
}

// NewInvalidLinkError は無効なリンクURLエラーを生成する。
func NewInvalidLinkError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidLink,
		Message:  fmt.Sprintf("無効なリンクURLです: %s", reason),
		Category: "validation",
		Action:   "公開されているWebサイトのURL（http:// または https:// で始まるURL）を指定してください。",
	}
}

// NewInvalidCursorError は無効なページネーションカーソルエラーを生成する。
func NewInvalidCursorError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCursor,
		Message:  "無効なページネーションカーソルです。",
		Category: "validation",
		Action:   "直前のレスポンスで返されたnext_cursorをそのまま指定してください。",
	}
}
