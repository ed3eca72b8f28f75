package domains

import (
	"testing"

	"go.uber.org/zap"
)

func TestIsTrusted(t *testing.T) {
	list := NewList(nil, nil, nil, zap.NewNop())
	tests := []struct {
		domain string
		want   bool
	}{
		{"paypal.com", true},
		{"PAYPAL.COM", true},
		{"mail.paypal.com", true},
		{"paypal.com.attacker.net", false},
		{"paypa1-secure.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := list.IsTrusted(tt.domain); got != tt.want {
			t.Errorf("IsTrusted(%q) = %v, want %v", tt.domain, got, tt.want)
		}
	}
}

func TestIsTyposquat(t *testing.T) {
	list := NewList(nil, nil, nil, zap.NewNop())
	tests := []struct {
		domain string
		want   bool
	}{
		{"paypa1-secure.com", true},
		{"micr0soft-login.net", true},
		{"paypal-account-verify.com", true}, // brand outside the allowlist
		{"paypal.com", false},
		{"mail.paypal.com", false},
		{"example.org", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := list.IsTyposquat(tt.domain); got != tt.want {
			t.Errorf("IsTyposquat(%q) = %v, want %v", tt.domain, got, tt.want)
		}
	}
}

func TestCustomListsReplaceDefaults(t *testing.T) {
	list := NewList([]string{"internal.corp"}, []string{"corp"}, []string{"c0rp"}, zap.NewNop())
	if !list.IsTrusted("mail.internal.corp") {
		t.Error("custom trusted domain not honored")
	}
	if list.IsTrusted("paypal.com") {
		t.Error("default allowlist leaked into custom list")
	}
	if !list.IsTyposquat("c0rp-login.net") {
		t.Error("custom typo pattern not honored")
	}
}
