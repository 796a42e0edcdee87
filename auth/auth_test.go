// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			// Verify it's valid hex
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	// Test randomness - two IDs should be different
	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestGenerateJudgeToken(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"default prefix", "khb-"},
		{"custom prefix", "judge_"},
		{"empty prefix", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateJudgeToken(tt.prefix)
			if err != nil {
				t.Fatalf("GenerateJudgeToken() error = %v", err)
			}
			if !strings.HasPrefix(token, tt.prefix) {
				t.Errorf("GenerateJudgeToken() = %q, want prefix %q", token, tt.prefix)
			}
			// 16 random bytes hex encoded after the prefix
			if len(token) != len(tt.prefix)+32 {
				t.Errorf("GenerateJudgeToken() length = %d, want %d", len(token), len(tt.prefix)+32)
			}
		})
	}

	tok1, _ := GenerateJudgeToken("khb-")
	tok2, _ := GenerateJudgeToken("khb-")
	if tok1 == tok2 {
		t.Error("GenerateJudgeToken() produced duplicate tokens (extremely unlikely)")
	}
}

func TestCheckAdminSecret(t *testing.T) {
	tests := []struct {
		name       string
		provided   string
		configured string
		wantErr    error
	}{
		{"exact match", "top-secret", "top-secret", nil},
		{"trims provided", "  top-secret\n", "top-secret", nil},
		{"trims configured", "top-secret", " top-secret ", nil},
		{"mismatch", "wrong", "top-secret", ErrInvalidAdminSecret},
		{"empty provided", "", "top-secret", ErrInvalidAdminSecret},
		{"whitespace provided", "   ", "top-secret", ErrInvalidAdminSecret},
		{"unconfigured", "anything", "", ErrSecretNotSet},
		{"both empty", "", "", ErrSecretNotSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAdminSecret(tt.provided, tt.configured)
			if err != tt.wantErr {
				t.Errorf("CheckAdminSecret() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
