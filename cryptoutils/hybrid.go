package cryptoutils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Decryption failure modes are kept distinct: a malformed ciphertext is most
// likely a transport or encoding problem, while a failed authentication tag
// means the wrong key was used or the ciphertext was tampered with, and
// callers log it at higher severity.
var (
	// ErrMalformedCiphertext means the ciphertext is not well-formed and
	// could not be parsed into its components.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")

	// ErrAuthenticationFailed means the AEAD integrity tag did not verify:
	// wrong private key or tampered ciphertext.
	ErrAuthenticationFailed = errors.New("ciphertext authentication failed")

	// ErrInvalidKey means the supplied key material could not be decoded
	// into a valid P-256 key.
	ErrInvalidKey = errors.New("invalid key material")
)

// gcmNonceSize is the standard 12-byte nonce for AES-GCM.
const gcmNonceSize = 12

// hkdfInfo binds derived keys to this protocol so the same ECDH secret used
// elsewhere cannot yield the same AEAD key.
var hkdfInfo = []byte("credential-bundle-v1")

// EphemeralKeyPair is a fresh P-256 keypair generated for exactly one
// session negotiation. The private scalar is held internally and exposed
// only as hex on demand; Zero wipes it once the negotiation is over.
type EphemeralKeyPair struct {
	// PublicKeyHex is the uncompressed public point, lowercase hex.
	PublicKeyHex string

	privateKey []byte
}

// GenerateKeypair produces a fresh P-256 keypair from crypto/rand.
func GenerateKeypair() (*EphemeralKeyPair, error) {
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}

	return &EphemeralKeyPair{
		PublicKeyHex: hex.EncodeToString(key.PublicKey().Bytes()),
		privateKey:   key.Bytes(),
	}, nil
}

// PrivateKeyHex returns the private scalar as lowercase hex. Empty after
// Zero has been called.
func (kp *EphemeralKeyPair) PrivateKeyHex() string {
	if len(kp.privateKey) == 0 {
		return ""
	}
	return hex.EncodeToString(kp.privateKey)
}

// Zero wipes the private scalar. Safe to call more than once.
func (kp *EphemeralKeyPair) Zero() {
	ZeroBytes(kp.privateKey)
	kp.privateKey = nil
}

// ZeroBytes overwrites b with zeroes.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// EncryptWithPublicKey encrypts data for the holder of the matching private
// key using ECIES: an ephemeral P-256 key agreement, HKDF-SHA256 key
// derivation, and AES-256-GCM authenticated encryption. A fresh sender key
// is generated per call.
//
// The output format is:
//
//	[sender key length (2 bytes, big-endian)][sender public key][nonce (12 bytes)][ciphertext+tag]
//
// The public key is supplied as lowercase hex of the uncompressed point.
// This mirrors the provider's bundle construction and exists here as the
// reference encryptor for round-trip verification.
func EncryptWithPublicKey(publicKeyHex string, data []byte) ([]byte, error) {
	pubBytes, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: public key is not valid hex", ErrInvalidKey)
	}

	recipient, err := ecdh.P256().NewPublicKey(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	sender, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sender key: %w", err)
	}

	shared, err := sender.ECDH(recipient)
	if err != nil {
		return nil, fmt.Errorf("key agreement failed: %w", err)
	}
	defer ZeroBytes(shared)

	senderPub := sender.PublicKey().Bytes()
	aead, err := newBundleAEAD(shared, senderPub)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, data, nil)

	result := make([]byte, 2+len(senderPub)+len(nonce)+len(ciphertext))
	binary.BigEndian.PutUint16(result[0:2], uint16(len(senderPub)))
	copy(result[2:2+len(senderPub)], senderPub)
	copy(result[2+len(senderPub):2+len(senderPub)+len(nonce)], nonce)
	copy(result[2+len(senderPub)+len(nonce):], ciphertext)

	return result, nil
}

// Decrypt opens a ciphertext produced for the given private key. Both
// arguments are lowercase hex at the boundary; internal operations work on
// raw bytes, and the decoded private scalar is wiped before returning.
//
// Returns ErrMalformedCiphertext if the ciphertext cannot be parsed into its
// components, and ErrAuthenticationFailed if the integrity tag does not
// verify.
func Decrypt(ciphertextHex, privateKeyHex string) ([]byte, error) {
	encrypted, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid hex", ErrMalformedCiphertext)
	}

	privBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: private key is not valid hex", ErrInvalidKey)
	}
	defer ZeroBytes(privBytes)

	privateKey, err := ecdh.P256().NewPrivateKey(privBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	if len(encrypted) < 2 {
		return nil, fmt.Errorf("%w: too short", ErrMalformedCiphertext)
	}

	senderKeyLen := int(binary.BigEndian.Uint16(encrypted[0:2]))
	if len(encrypted) < 2+senderKeyLen+gcmNonceSize {
		return nil, fmt.Errorf("%w: truncated", ErrMalformedCiphertext)
	}

	senderPub := encrypted[2 : 2+senderKeyLen]
	sender, err := ecdh.P256().NewPublicKey(senderPub)
	if err != nil {
		return nil, fmt.Errorf("%w: bad sender key: %v", ErrMalformedCiphertext, err)
	}

	shared, err := privateKey.ECDH(sender)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	defer ZeroBytes(shared)

	aead, err := newBundleAEAD(shared, senderPub)
	if err != nil {
		return nil, err
	}

	nonceStart := 2 + senderKeyLen
	nonce := encrypted[nonceStart : nonceStart+gcmNonceSize]
	ciphertext := encrypted[nonceStart+gcmNonceSize:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	return plaintext, nil
}

// newBundleAEAD derives the AES-256-GCM cipher from an ECDH shared secret
// using HKDF-SHA256 salted with the sender's public key.
func newBundleAEAD(shared, senderPub []byte) (cipher.AEAD, error) {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, shared, senderPub, hkdfInfo)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}
