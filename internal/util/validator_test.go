package util

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// TestValidateAmount_Positive 测试正数金额
func TestValidateAmount_Positive(t *testing.T) {
	testCases := []string{"0.01", "1", "100.5", "9999999.99"}

	for _, s := range testCases {
		err := ValidateAmount(decimal.RequireFromString(s))
		if err != nil {
			t.Errorf("ValidateAmount(%s) error = %v, want nil", s, err)
		}
	}
}

// TestValidateAmount_Zero 测试零金额（异常）
func TestValidateAmount_Zero(t *testing.T) {
	err := ValidateAmount(decimal.Zero)

	if err == nil {
		t.Error("ValidateAmount(0) error = nil, want error")
	}
}

// TestValidateAmount_Negative 测试负数金额（异常）
func TestValidateAmount_Negative(t *testing.T) {
	testCases := []string{"-0.01", "-100", "-9999.99"}

	for _, s := range testCases {
		err := ValidateAmount(decimal.RequireFromString(s))
		if err == nil {
			t.Errorf("ValidateAmount(%s) error = nil, want error", s)
		}
	}
}

// TestValidateAmount_TooLarge 测试金额过大（异常）
func TestValidateAmount_TooLarge(t *testing.T) {
	err := ValidateAmount(decimal.NewFromInt(100000000))

	if err == nil {
		t.Error("ValidateAmount(100000000) error = nil, want error")
	}
}

func TestValidateType(t *testing.T) {
	for _, s := range []string{"income", "expense"} {
		if err := ValidateType(s); err != nil {
			t.Errorf("ValidateType(%q) error = %v, want nil", s, err)
		}
	}
	for _, s := range []string{"", "Income", "transfer", " expense"} {
		if err := ValidateType(s); err == nil {
			t.Errorf("ValidateType(%q) error = nil, want error", s)
		}
	}
}

// TestValidateCategory 测试分类
func TestValidateCategory(t *testing.T) {
	if err := ValidateCategory("Food"); err != nil {
		t.Errorf("ValidateCategory(Food) error = %v, want nil", err)
	}
	if err := ValidateCategory("   "); err == nil {
		t.Error("ValidateCategory(blank) error = nil, want error")
	}
	if err := ValidateCategory(strings.Repeat("x", 101)); err == nil {
		t.Error("ValidateCategory(too long) error = nil, want error")
	}
}

func TestValidateDescription(t *testing.T) {
	if err := ValidateDescription("Lunch"); err != nil {
		t.Errorf("ValidateDescription(Lunch) error = %v, want nil", err)
	}
	if err := ValidateDescription(""); err == nil {
		t.Error("ValidateDescription(empty) error = nil, want error")
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@example.com", "first.last@mail.co"}
	for _, e := range valid {
		if err := ValidateEmail(e); err != nil {
			t.Errorf("ValidateEmail(%q) error = %v, want nil", e, err)
		}
	}
	invalid := []string{"", "not-an-email", "Bob <bob@example.com>"}
	for _, e := range invalid {
		if err := ValidateEmail(e); err == nil {
			t.Errorf("ValidateEmail(%q) error = nil, want error", e)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); err == nil {
		t.Error("ValidatePassword(5 chars) error = nil, want error")
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Errorf("ValidatePassword(6 chars) error = %v, want nil", err)
	}
}
