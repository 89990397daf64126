package services

import (
	"errors"
	"fmt"
)

// RuleError is a rejected request. Its message is shown to the user as is.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func newRuleError(format string, args ...any) error {
	return &RuleError{Message: fmt.Sprintf(format, args...)}
}

// AsRuleError extracts a RuleError from err's chain
func AsRuleError(err error) (*RuleError, bool) {
	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		return ruleErr, true
	}
	return nil, false
}

var (
	errInsufficientFunds = &RuleError{Message: "所持金が足りません。"}
	errInvalidAmount     = &RuleError{Message: "金額は1以上を指定してください。"}
	errNegativeCredit    = &RuleError{Message: "信用ポイントがマイナスのため、この操作はできません。"}
	errNoCompany         = &RuleError{Message: "会社に所属していません。"}
	errNotOwner          = &RuleError{Message: "この操作は社長のみ実行できます。"}
)
