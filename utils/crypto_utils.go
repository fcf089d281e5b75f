package utils

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

// GetPrivateKey will return a secp256k1 private key object given a byte slice. Only slices between lengths 1 and 32
// (inclusive) are valid, which in particular rejects the zero key (whose big-endian encoding is empty).
func GetPrivateKey(b []byte) (*ecdsa.PrivateKey, error) {
	// Make sure that private key is not zero
	if len(b) < 1 || len(b) > 32 {
		return nil, errors.New("invalid private key")
	}

	// Then pad the private key slice to a fixed 32-byte array
	paddedPrivateKey := make([]byte, 32)
	copy(paddedPrivateKey[32-len(b):], b)

	// Next we will actually retrieve the private key object
	privateKey, err := crypto.ToECDSA(paddedPrivateKey[:])
	return privateKey, errors.WithStack(err)
}

// GetP256PrivateKey will return a NIST P-256 private key object given its scalar value. Scalars outside of
// [1, N-1] are rejected.
func GetP256PrivateKey(d *big.Int) (*ecdsa.PrivateKey, error) {
	curve := elliptic.P256()
	if d.Sign() < 1 || d.Cmp(curve.Params().N) >= 0 {
		return nil, errors.New("invalid private key")
	}

	privateKey := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve},
		D:         new(big.Int).Set(d),
	}
	privateKey.PublicKey.X, privateKey.PublicKey.Y = curve.ScalarBaseMult(d.Bytes())
	return privateKey, nil
}

// SignP256Digest signs a 32-byte digest with the given P-256 private key and returns the (r, s) signature values.
// The signing nonce is drawn from an HKDF stream keyed by the private key and digest, so repeated calls with
// identical inputs yield identical signatures.
func SignP256Digest(privateKey *ecdsa.PrivateKey, digest [32]byte) (*big.Int, *big.Int, error) {
	// Derive a per-(key, digest) byte stream for the nonce source.
	secret := make([]byte, 0, 64)
	secret = append(secret, privateKey.D.FillBytes(make([]byte, 32))...)
	secret = append(secret, digest[:]...)
	nonceSource := hkdf.New(sha256.New, secret, nil, []byte("p256-deterministic-nonce"))

	r, s, err := ecdsa.Sign(nonceSource, privateKey, digest[:])
	return r, s, errors.WithStack(err)
}
