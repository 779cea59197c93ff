// Command relayd serves the wallet relay API: it forwards opaque
// client-signed activities to the custody provider, negotiates read-only and
// read-write sessions with ephemeral keys, and normalizes the provider's
// versioned result shapes into canonical records.
//
// Usage:
//
//	relayd --provider-url https://api.provider.example \
//	       --api-private-key <hex P-256 scalar> \
//	       --listen-addr 127.0.0.1:8080
//
// A YAML config file can carry the provider URL and stamping key instead;
// flags take precedence.
package main
