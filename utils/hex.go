// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"encoding/hex"
	"strings"
)

// SanitizeHexString removes an optional 0x prefix.
func SanitizeHexString(hex string) string {
	hex = strings.TrimPrefix(hex, "0x")
	return strings.TrimPrefix(hex, "0X")
}

// DecodeHexString decodes hex, with or without a 0x prefix.
func DecodeHexString(s string) ([]byte, error) {
	return hex.DecodeString(SanitizeHexString(strings.TrimSpace(s)))
}

// IsEmptyOrZeroes reports whether b has no non-zero byte.
func IsEmptyOrZeroes(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
