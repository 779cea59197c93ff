package normalize

// Sub-organization creation has shipped two result generations: the current
// v7 shape with a dedicated sub-organization id, root user list, and an
// optional attached wallet, and the legacy shape that only carried the new
// organization id.
var subOrganizationExtractors = []extractor{
	{
		key: "createSubOrganizationResultV7",
		apply: func(result map[string]any, rec *Record) {
			rec.SubOrgID = str(result, "subOrganizationId")
			rec.RootUserIDs = strSlice(result, "rootUserIds")
			if wallet := nested(result, "wallet"); wallet != nil {
				rec.WalletID = str(wallet, "walletId")
				rec.WalletAddresses = strSlice(wallet, "addresses")
			}
		},
	},
	{
		key: "createSubOrganizationResult",
		apply: func(result map[string]any, rec *Record) {
			rec.SubOrgID = str(result, "organizationId")
		},
	},
}

var walletExtractors = []extractor{
	{
		key: "createWalletResult",
		apply: func(result map[string]any, rec *Record) {
			rec.WalletID = str(result, "walletId")
			rec.WalletAddresses = strSlice(result, "addresses")
		},
	},
}

// Transaction signing kept its result field name across activity versions
// until V2 renamed it; try the newer name first.
var signTransactionExtractors = []extractor{
	{
		key: "signTransactionResultV2",
		apply: func(result map[string]any, rec *Record) {
			rec.SignedTransaction = str(result, "signedTransaction")
		},
	},
	{
		key: "signTransactionResult",
		apply: func(result map[string]any, rec *Record) {
			rec.SignedTransaction = str(result, "signedTransaction")
		},
	},
}

var signRawPayloadExtractors = []extractor{
	{
		key: "signRawPayloadResult",
		apply: func(result map[string]any, rec *Record) {
			rec.SignatureR = str(result, "r")
			rec.SignatureS = str(result, "s")
			rec.SignatureV = str(result, "v")
		},
	},
}

var readOnlySessionExtractors = []extractor{
	{
		key: "createReadOnlySessionResult",
		apply: func(result map[string]any, rec *Record) {
			rec.APIKeyID = str(result, "apiKeyId")
			rec.SessionToken = str(result, "session")
		},
	},
}

var readWriteSessionExtractors = []extractor{
	{
		key: "createReadWriteSessionResultV2",
		apply: func(result map[string]any, rec *Record) {
			rec.APIKeyID = str(result, "apiKeyId")
			rec.CredentialBundle = str(result, "credentialBundle")
		},
	},
}
