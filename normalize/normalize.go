package normalize

import (
	"strconv"

	"github.com/votis/wallet-relay/interfaces"
)

// Record is the canonical, version-independent representation of an
// activity's result. It is flat; which fields are populated depends on the
// activity type. Unresolved fields stay at their zero values (empty strings,
// empty slices) rather than failing the parse.
type Record struct {
	ActivityID  string                    `json:"activity_id"`
	Status      interfaces.ActivityStatus `json:"status"`
	TimestampMS int64                     `json:"timestamp_ms"`

	// Sub-organization creation.
	SubOrgID    string   `json:"sub_org_id,omitempty"`
	RootUserIDs []string `json:"root_user_ids"`

	// Wallet creation (also attached to sub-organization results).
	WalletID        string   `json:"wallet_id,omitempty"`
	WalletAddresses []string `json:"wallet_addresses"`

	// Transaction and raw-payload signing.
	SignedTransaction string `json:"signed_transaction,omitempty"`
	SignatureR        string `json:"signature_r,omitempty"`
	SignatureS        string `json:"signature_s,omitempty"`
	SignatureV        string `json:"signature_v,omitempty"`

	// Session creation.
	APIKeyID         string `json:"api_key_id,omitempty"`
	SessionToken     string `json:"session_token,omitempty"`
	CredentialBundle string `json:"credential_bundle,omitempty"`
}

// extractor pulls one schema generation of a result into the record. Each
// extractor is keyed by the result field that identifies its generation and
// is pure: it reads the nested map and fills the record, tolerating any
// missing substructure.
type extractor struct {
	key   string
	apply func(result map[string]any, rec *Record)
}

// extractorSets holds the ordered strategies per activity type, newest shape
// first. When both a newer and a legacy shape are present the newer one
// wins because it is tried first.
var extractorSets = map[interfaces.ActivityType][]extractor{
	interfaces.ActivityTypeCreateSubOrganization:  subOrganizationExtractors,
	interfaces.ActivityTypeCreateWallet:           walletExtractors,
	interfaces.ActivityTypeSignTransaction:        signTransactionExtractors,
	interfaces.ActivityTypeSignRawPayload:         signRawPayloadExtractors,
	interfaces.ActivityTypeCreateReadOnlySession:  readOnlySessionExtractors,
	interfaces.ActivityTypeCreateReadWriteSession: readWriteSessionExtractors,
}

// probeOrder is the fallback sequence when the envelope carries no usable
// activity type: every known extractor family, deterministic order.
var probeOrder = []interfaces.ActivityType{
	interfaces.ActivityTypeCreateSubOrganization,
	interfaces.ActivityTypeCreateWallet,
	interfaces.ActivityTypeSignTransaction,
	interfaces.ActivityTypeSignRawPayload,
	interfaces.ActivityTypeCreateReadOnlySession,
	interfaces.ActivityTypeCreateReadWriteSession,
}

// Normalize extracts the canonical record from an activity envelope.
//
// A nil envelope or one with no activity payload yields a fully-nulled
// record, not an error: pending and failed activities legitimately lack a
// result. The extractor strategies for the envelope's activity type are
// tried in order, newest schema generation first; no strategy matching is
// not an error either, it just leaves the type-specific fields nulled.
func Normalize(env *interfaces.ActivityEnvelope) *Record {
	rec := &Record{
		RootUserIDs:     []string{},
		WalletAddresses: []string{},
	}
	if env == nil {
		return rec
	}

	rec.ActivityID = env.ID
	rec.Status = env.Status
	if env.TimestampMS != "" {
		if ms, err := strconv.ParseInt(env.TimestampMS, 10, 64); err == nil {
			rec.TimestampMS = ms
		}
	}

	if env.Result == nil {
		return rec
	}

	if set, ok := extractorSets[env.Type]; ok {
		applyFirst(set, env.Result, rec)
		return rec
	}

	// Unknown or absent type: probe every family until one shape matches.
	for _, typ := range probeOrder {
		if applyFirst(extractorSets[typ], env.Result, rec) {
			break
		}
	}
	return rec
}

// applyFirst runs the first extractor whose key is present in the result.
// Reports whether any matched.
func applyFirst(set []extractor, result map[string]any, rec *Record) bool {
	for _, ex := range set {
		nested, ok := result[ex.key]
		if !ok {
			continue
		}
		if m, ok := nested.(map[string]any); ok {
			ex.apply(m, rec)
		}
		return true
	}
	return false
}

// str reads a string field, empty when absent or of the wrong type.
func str(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

// strSlice reads a list of strings, empty (never nil) when absent.
func strSlice(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// nested reads a nested object, nil when absent.
func nested(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}
