package sdk

import "github.com/gagliardetto/solana-go"

// NativeMint stands in for the reference currency (lamports) wherever a mint is expected.
var NativeMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// Asset names what a balance is denominated in: a token mint or the native reference currency.
type Asset solana.PublicKey

// AssetNative is the reference currency rewards are paid in.
var AssetNative = Asset(NativeMint)

// TokenAsset wraps a mint so ledger calls read like sdk.GetBalance(addr, sdk.TokenAsset(mint)).
func TokenAsset(mint solana.PublicKey) Asset {
	return Asset(mint)
}

// IsNative reports whether the asset is the reference currency.
func (a Asset) IsNative() bool {
	return a == AssetNative
}

// Mint returns the underlying mint key.
func (a Asset) Mint() solana.PublicKey {
	return solana.PublicKey(a)
}

// String returns "native" for the reference currency and the base58 mint otherwise.
// Example payload: sdk.AssetNative.String()
func (a Asset) String() string {
	if a.IsNative() {
		return "native"
	}
	return solana.PublicKey(a).String()
}
