package utils

import (
	"fmt"
	"regexp"

	sdkmath "cosmossdk.io/math"
)

const maxUtilityNameLength = 64

var utilityNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _.-]*$`)

// IsValidUtilityName checks the name of a utility or receipt token.
func IsValidUtilityName(name string) bool {
	return len(name) > 0 && len(name) <= maxUtilityNameLength && utilityNameRegex.MatchString(name)
}

// ParsePositiveAmount parses a base-unit decimal string.
func ParsePositiveAmount(s string) (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid amount %q", s)
	}
	if !amount.IsPositive() {
		return sdkmath.Int{}, fmt.Errorf("amount must be positive, got %s", s)
	}
	return amount, nil
}
