package types

import "fmt"

type WithdrawalState string

const (
	Unbonding    WithdrawalState = "unbonding"
	Withdrawable WithdrawalState = "withdrawable"
	Withdrawn    WithdrawalState = "withdrawn"
)

func (s WithdrawalState) ToString() string {
	return string(s)
}

func FromStringToWithdrawalState(s string) (WithdrawalState, error) {
	switch s {
	case "unbonding":
		return Unbonding, nil
	case "withdrawable":
		return Withdrawable, nil
	case "withdrawn":
		return Withdrawn, nil
	default:
		return "", fmt.Errorf("invalid withdrawal state: %s", s)
	}
}
