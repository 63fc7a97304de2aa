package repository

import "errors"

// リモートストア呼び出しの失敗種別。
// 呼び出し側（usecase）はerrors.Isで分岐し、生のHTTPステータスは見ない。
// メッセージはUI側へそのまま出す分類ラベル。
var (
	// 未ログイン（401）。キャッシュには触らない。
	ErrUnauthenticated = errors.New("Unauthenticated")

	// 業務的な拒否（在庫切れ・数量不正など、400/409/422）。直前の状態へ戻す。
	ErrValidationRejected = errors.New("ValidationRejected")

	// 対象がサーバー側に存在しない（404）。サーバーの不在を正としてエントリを破棄する。
	ErrNotFound = errors.New("NotFound")

	// 確認が取れなかった（5xx・タイムアウト・通信断）。適用されなかったものとして扱う。
	ErrNetwork = errors.New("NetworkError")
)
