// Package relay forwards opaque client-signed requests to the custody
// provider's activity-execution API.
//
// Clients sign request bodies locally and hand the backend a stamped
// envelope; this package never inspects or mutates that material. Its job is
// routing: select the provider endpoint from the activity type, package the
// stamp per the authentication mode, submit once through the transport
// collaborator, and decode the activity envelope from the response.
//
// # Authentication modes
//
//   - api_key: the stamp travels as the X-Stamp request-signing header over
//     the body.
//   - webauthn, oauth: the stamp is embedded as a clientSignature field in a
//     JSON envelope wrapping the raw body.
//
// The dispatch is the one place the three schemes must be kept
// bit-compatible with the provider's expectations. A wrong header name or
// field placement causes a silent authentication failure upstream rather
// than a decode error, which is why the packaging is covered by tests that
// assert the exact wire shape.
//
// # Error contract
//
// Every failure is a tagged interfaces.Error. Provider rejections preserve
// the raw status code and body verbatim so callers can re-map them. The
// relay performs a single attempt per call: no retries, no timeouts.
package relay
