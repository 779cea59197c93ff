// Package normalize extracts canonical flat records from the custody
// provider's nested, versioned activity results.
//
// The provider evolves its result schemas: the same logical operation can
// answer with different nested shapes depending on the activity version that
// produced it. Rather than deeply nested conditional lookups, each logical
// operation has an ordered list of extractor strategies, newest shape first,
// each independently pure. The first strategy whose identifying key is
// present wins; if both a newer and a legacy shape are somehow present, the
// newer one is used.
//
// Missing optional substructures never fail a parse: fields they would have
// filled resolve to empty values. An envelope with no activity payload at
// all produces a fully-nulled record, since pending and failed activities
// legitimately lack a result.
package normalize
