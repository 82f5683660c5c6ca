package secrets

import (
	"crypto/rsa"
	"math/big"
	"runtime"
)

// ZeroBytes overwrites b with zeros. Best effort only: the runtime may
// already hold copies elsewhere.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

func zeroInt(n *big.Int) {
	if n == nil {
		return
	}
	words := n.Bits()
	for i := range words {
		words[i] = 0
	}
	n.SetInt64(0)
}

func wipePrivateKey(priv *rsa.PrivateKey) {
	zeroInt(priv.D)
	for _, p := range priv.Primes {
		zeroInt(p)
	}
	zeroInt(priv.Precomputed.Dp)
	zeroInt(priv.Precomputed.Dq)
	zeroInt(priv.Precomputed.Qinv)
	runtime.KeepAlive(priv)
}
