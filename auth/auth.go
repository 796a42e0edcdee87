// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAdminSecret = errors.New("invalid admin secret")
	ErrSecretNotSet       = errors.New("admin secret not configured")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateJudgeToken creates a random bearer token for a judge,
// prefixed for easy recognition in logs and hand-outs (e.g. "khb-3fa9...").
func GenerateJudgeToken(prefix string) (string, error) {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate judge token: %w", err)
	}
	return prefix + hex.EncodeToString(b), nil
}

// CheckAdminSecret compares the client-provided secret against the configured
// one in constant time. Surrounding whitespace is stripped from both sides
// before comparison. An empty configured secret is a server misconfiguration,
// never a match.
func CheckAdminSecret(provided, configured string) error {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		return ErrSecretNotSet
	}
	provided = strings.TrimSpace(provided)
	if provided == "" {
		return ErrInvalidAdminSecret
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(configured)) != 1 {
		return ErrInvalidAdminSecret
	}
	return nil
}
