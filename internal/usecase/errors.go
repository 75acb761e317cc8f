package usecase

import (
	"errors"
	"fmt"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// ドメインルール違反。handlerがステータスへ変換する。
var (
	//在庫不足。トランザクション全体をロールバックさせる。
	ErrInsufficientStock = errors.New("insufficient stock")
	//状態遷移違反
	ErrInvalidTransition = errors.New("invalid transition")
	//前払いが必要なのに未払い
	ErrPaymentNotCompleted = errors.New("payment not completed")
	//決済プロバイダに到達できない（呼び出し側でリトライ可能）
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	//カウンタが負になる等の不変条件違反。黙って直さずログに残す。
	ErrInconsistency = errors.New("inconsistency detected")
)

// バウチャー検証の失敗理由。最初に引っかかった条件を返す。
var (
	ErrVoucherNotFound    = errors.New("voucher not found")
	ErrVoucherInactive    = errors.New("voucher inactive")
	ErrVoucherNotInWindow = errors.New("voucher not in validity window")
	ErrVoucherExhausted   = errors.New("voucher usage limit reached")
	ErrVoucherMinOrder    = errors.New("order amount below voucher minimum")
	ErrVoucherUserLimit   = errors.New("voucher user limit reached")
)

// バウチャー検証エラーかどうか
func IsVoucherError(err error) bool {
	return errors.Is(err, ErrVoucherNotFound) ||
		errors.Is(err, ErrVoucherInactive) ||
		errors.Is(err, ErrVoucherNotInWindow) ||
		errors.Is(err, ErrVoucherExhausted) ||
		errors.Is(err, ErrVoucherMinOrder) ||
		errors.Is(err, ErrVoucherUserLimit)
}
