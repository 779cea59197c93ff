// Package cryptoutils implements the hybrid-encryption engine used during
// session negotiation with the custody provider.
//
// The provider encrypts session credential bundles to an ephemeral public
// key supplied in the session request; this package generates those
// ephemeral keypairs and performs the authenticated decryption of the
// returned bundle. The scheme is ECIES:
//
//   - Elliptic curve (NIST P-256) for key agreement
//   - ECDH for shared secret derivation
//   - HKDF-SHA256 for key derivation, salted with the sender public key
//   - AES-256-GCM for authenticated encryption
//
// # Encoding contract
//
// Public keys, private keys, and ciphertexts cross the package boundary as
// lowercase hex strings; all internal operations work on raw bytes. The
// ciphertext binary format is:
//
//	[sender key length (2 bytes)][sender public key][nonce (12 bytes)][ciphertext+tag]
//
// # Key lifetime
//
// An EphemeralKeyPair is generated fresh per read-write negotiation, used
// exactly once, and never reused. The private scalar is wiped via Zero as
// soon as decryption completes, successfully or not. Decoded key material
// inside Decrypt is likewise wiped before returning.
//
// # Failure modes
//
// Decrypt distinguishes ErrMalformedCiphertext (structural damage, usually a
// transport or encoding problem) from ErrAuthenticationFailed (tag mismatch:
// wrong key or tampering). The latter may indicate an attack and is logged
// at higher severity by callers.
package cryptoutils
