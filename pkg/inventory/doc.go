// Package inventory provides containers and an entity catalog backed by plain
// files, so recycle runs can be driven from the command line.
//
// A target file looks like:
//
//	name: Barrel
//	kind: container
//	items:
//	  - id: Skyrim.esm|0x13911
//	    name: Leather Boots
//	    quantity: 3
//	    weight: 2
//	    category: armor
//	    keywords: [Skyrim.esm|0x6BBDD, ArmorBoots]
//
// Keyword entries that are entity identifiers take their text from the
// catalog, so rule match-keys see editor names such as ArmorMaterialLeather.
package inventory
