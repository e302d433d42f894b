// Package rules loads salvage rule documents and merges them into one RuleSet.
//
// A rule document maps match-keys to lists of output rules and may list
// excluded entities:
//
//	{
//	  "Keywords": {
//	    "leather": [{"recycleTo": "Skyrim.esm|0xDB5D2", "matRatio": 0.1}],
//	    "ArmorJewelry": []
//	  },
//	  "Exclude": ["Skyrim.esm|0xA8668"]
//	}
//
// # Loading
//
// Loader.Load takes documents in precedence order (base document first) and
//
//   - drops every output rule whose target the Resolver cannot resolve, keeping
//     the match-key even when its list becomes empty,
//   - replaces the whole rule list of a key each time a later document defines it
//     (keys compare case-insensitively; the key keeps its first position),
//   - unions the exclusion lists, dropping entries that do not resolve.
//
// Unresolved references are an expected, environment-dependent condition and
// are reported through the Observer, not as errors. Missing, unparseable or
// malformed documents are errors and match ErrConfiguration.
//
// # Identifiers
//
// Identifiers of the form "Plugin.esp|0xFORMID" are canonicalized so that two
// spellings of one entity never produce two yield entries. Anything else is an
// opaque string.
package rules
