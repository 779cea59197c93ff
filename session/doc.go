// Package session orchestrates read-only and read-write session negotiation
// with the custody provider on top of the activity relay.
//
// A read-only negotiation is a single stamped activity whose nested result
// is extracted and returned. A read-write negotiation additionally carries
// an ephemeral public key in the request; the provider answers with a
// credential bundle encrypted to that key, which is decrypted with the
// matching ephemeral private key into short-lived API credentials.
//
// # Key lifecycle
//
// The ephemeral keypair is generated by the caller (cryptoutils
// .GenerateKeypair) and used for exactly one negotiation. The private key is
// never logged, persisted, or returned; decoded copies are wiped when the
// call returns, whatever the outcome. Every decrypted Credentials value is
// derived from exactly one keypair that is never reused across negotiations.
//
// # Extraction errors
//
// Each stage of the read-write extraction ladder fails with its own
// sentinel (ErrMissingResult, ErrMissingBundle, ErrInvalidBundleType) so
// callers can distinguish an empty provider answer from a corrupted one.
//
// The negotiator does not enforce session expiry: it stamps creation time
// into SessionMetadata and leaves the 15-minute read-write / 1-hour
// read-only policy to the caller's session store.
package session
