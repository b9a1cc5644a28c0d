package util

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
)

var maxAmount = decimal.NewFromInt(10000000)

// ValidateAmount 验证金额（必须为正数且不超过上限）
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount.String())
	}
	if amount.GreaterThanOrEqual(maxAmount) { // 限制最大金额为1千万
		return fmt.Errorf("amount too large, got %s", amount.String())
	}
	return nil
}

// ValidateType 验证类型（income / expense）
func ValidateType(t string) error {
	switch t {
	case "income", "expense":
		return nil
	case "":
		return fmt.Errorf("type is empty")
	default:
		return fmt.Errorf("type must be income or expense")
	}
}

// ValidateCategory 验证分类（不能为空且长度合理）
func ValidateCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("category is empty")
	}
	if len(category) > 100 {
		return fmt.Errorf("category too long, max 100 characters")
	}
	return nil
}

// ValidateDescription 验证描述
func ValidateDescription(desc string) error {
	if strings.TrimSpace(desc) == "" {
		return fmt.Errorf("description is empty")
	}
	if len(desc) > 255 {
		return fmt.Errorf("description too long, max 255 characters")
	}
	return nil
}

func ValidateNote(note string) error {
	if len(note) > 255 {
		return fmt.Errorf("note too long, max 255 characters")
	}
	return nil
}

// ValidateEmail 验证邮箱格式
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidatePassword 密码至少 6 位
func ValidatePassword(pwd string) error {
	if len(pwd) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}
	if len(pwd) > 72 { // bcrypt 上限
		return fmt.Errorf("password too long, max 72 characters")
	}
	return nil
}
