package service

import "github.com/shopspring/decimal"

// ToggleWallet flips the use-wallet flag.
func ToggleWallet(current bool) bool {
	return !current
}

// WalletDeduction is the part of total covered by the wallet: the balance,
// capped at total, or zero when the wallet is not used.
func WalletDeduction(total, balance decimal.Decimal, useWallet bool) decimal.Decimal {
	if !useWallet || !balance.IsPositive() || !total.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(balance, total)
}

// Payable is what remains to be charged after the wallet deduction.
func Payable(total, balance decimal.Decimal, useWallet bool) decimal.Decimal {
	p := total.Sub(WalletDeduction(total, balance, useWallet))
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}
