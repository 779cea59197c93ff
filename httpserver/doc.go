/*
Package httpserver implements the inbound HTTP API of the wallet relay.

It exposes the relay's three capabilities to the web/controller layer:

 1. Activity relay - forward an opaque client-signed request to the custody
    provider and return the normalized canonical record.
 2. Session negotiation - create read-only and read-write sessions; the
    latter returns decrypted short-lived credentials exactly once.
 3. Bundle decryption - open a previously-issued credential bundle for
    callers recovering from a dropped response.

# Endpoints

  - POST /api/v1/activity
  - POST /api/v1/sessions/read-only
  - POST /api/v1/sessions/read-write
  - POST /api/v1/sessions/decrypt
  - GET /livez, /readyz, /drain, /undrain
  - /debug (pprof, optional)

Errors carry the relay's error kind and, for provider rejections, the raw
upstream status so the controller layer can choose its own user-facing
messaging. Prometheus metrics are served on a separate listen address.
*/
package httpserver
