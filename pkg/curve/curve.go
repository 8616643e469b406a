// Package curve implements the constant-product pricing rule for a single
// token traded against native currency over virtual reserves. All functions
// are pure: they never retain or mutate their arguments and carry no state.
//
// Division truncates toward zero everywhere. Callers must preserve this
// rounding direction exactly; the reserve ledger's accounting depends on it.
package curve

import "math/big"

var (
	// MaxUint256 is the largest value representable in 256-bit unsigned
	// arithmetic. It doubles as the SpotPrice sentinel for an empty curve.
	MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	// PriceScale expresses spot prices in wei per whole (1e18-unit) token.
	PriceScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

// TokensOut returns the token amount released by the curve for ethIn native
// units given reserves vs (virtual native) and vt (tokens still on the curve):
//
//	out = vt - floor(vs*vt / (vs+ethIn))
//
// The result is zero when ethIn is zero and strictly below vt for any finite
// positive ethIn with vs > 0. Monotonically increasing in ethIn.
func TokensOut(vs, vt, ethIn *big.Int) *big.Int {
	if ethIn.Sign() == 0 {
		return new(big.Int)
	}
	k := new(big.Int).Mul(vs, vt)
	den := new(big.Int).Add(vs, ethIn)
	return new(big.Int).Sub(vt, k.Div(k, den))
}

// EthOut returns the native amount released by the curve for tokensIn tokens:
//
//	out = floor(vs*tokensIn / (vt+tokensIn))
//
// This is vs - (vs*vt)/(vt+tokensIn) with the division floored on the payout
// side, so the wei lost to truncation stays with the pool rather than the
// trader. Zero when tokensIn is zero (or floors to zero for dust sells).
// Monotonically increasing in tokensIn.
func EthOut(vs, vt, tokensIn *big.Int) *big.Int {
	if tokensIn.Sign() == 0 {
		return new(big.Int)
	}
	num := new(big.Int).Mul(vs, tokensIn)
	den := new(big.Int).Add(vt, tokensIn)
	return num.Div(num, den)
}

// K returns the reserve product vs*vt.
func K(vs, vt *big.Int) *big.Int {
	return new(big.Int).Mul(vs, vt)
}

// SpotPrice returns the instantaneous price in wei per whole token,
// floor(vs*PriceScale/vt). When the curve holds no tokens the price is
// unquotable and the MaxUint256 sentinel is returned.
func SpotPrice(vs, vt *big.Int) *big.Int {
	if vt.Sign() == 0 {
		return new(big.Int).Set(MaxUint256)
	}
	p := new(big.Int).Mul(vs, PriceScale)
	return p.Div(p, vt)
}

// Fee returns floor(amount*feeBps/10000), the treasury cut of a gross flow.
func Fee(amount *big.Int, feeBps uint16) *big.Int {
	f := new(big.Int).Mul(amount, big.NewInt(int64(feeBps)))
	return f.Div(f, big.NewInt(10000))
}
