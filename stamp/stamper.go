// Package stamp implements the request-signing stamp the relay uses when it
// authors session activities itself.
//
// Client-originated requests arrive with the stamp already computed and are
// never re-signed here. Session negotiation, however, is initiated by the
// backend with its provider-issued API key, so this package produces the
// provider's stamp format: an ECDSA P-256 signature over the SHA-256 of the
// body, wrapped in a small JSON header and base64url-encoded.
package stamp

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

// Scheme identifies the signature scheme in the stamp header.
const Scheme = "SIGNATURE_SCHEME_TK_API_P256"

// APIKeyStamper signs activity bodies with a provider-issued API keypair.
type APIKeyStamper struct {
	publicKeyHex string
	privateKey   *ecdsa.PrivateKey
}

// stampHeader is the JSON structure the provider expects inside the stamp.
type stampHeader struct {
	PublicKey string `json:"publicKey"`
	Scheme    string `json:"scheme"`
	Signature string `json:"signature"`
}

// NewAPIKeyStamper creates a stamper from a hex-encoded 32-byte P-256
// private scalar. The public key is derived from it.
func NewAPIKeyStamper(privateKeyHex string) (*APIKeyStamper, error) {
	scalar, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("api key is not valid hex: %w", err)
	}
	if len(scalar) != 32 {
		return nil, errors.New("api key must be a 32-byte P-256 scalar")
	}

	curve := elliptic.P256()
	privateKey := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve},
		D:         new(big.Int).SetBytes(scalar),
	}
	privateKey.PublicKey.X, privateKey.PublicKey.Y = curve.ScalarBaseMult(scalar)
	if privateKey.PublicKey.X.Sign() == 0 && privateKey.PublicKey.Y.Sign() == 0 {
		return nil, errors.New("api key scalar is not on the curve")
	}

	return &APIKeyStamper{
		publicKeyHex: hex.EncodeToString(elliptic.MarshalCompressed(curve, privateKey.PublicKey.X, privateKey.PublicKey.Y)),
		privateKey:   privateKey,
	}, nil
}

// PublicKeyHex returns the compressed public key of the stamping API key.
func (s *APIKeyStamper) PublicKeyHex() string {
	return s.publicKeyHex
}

// Stamp signs body and returns the base64url-encoded stamp header.
func (s *APIKeyStamper) Stamp(body []byte) (string, error) {
	if len(body) == 0 {
		return "", errors.New("cannot stamp an empty body")
	}

	digest := sha256.Sum256(body)
	signature, err := ecdsa.SignASN1(rand.Reader, s.privateKey, digest[:])
	if err != nil {
		return "", fmt.Errorf("signing failed: %w", err)
	}

	header, err := json.Marshal(stampHeader{
		PublicKey: s.publicKeyHex,
		Scheme:    Scheme,
		Signature: hex.EncodeToString(signature),
	})
	if err != nil {
		return "", fmt.Errorf("could not encode stamp: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(header), nil
}
