// Salvage converts the contents of a container into crafting materials
// according to data-driven rule documents.
//
// Rule documents are read from a rules directory on every run, merged key by
// key and filtered against an entity catalog. Every eligible item whose tags
// match a rule is consumed and the rounded-up yield is added back.
//
// Usage:
//
//	# Recycle one container file
//	salvage run barrel.yaml
//
//	# Show what would happen without changing anything
//	salvage run --dry-run --output json barrel.yaml
//
//	# Check the rule documents
//	salvage validate
//
//	# Re-validate on every change and serve metrics
//	salvage watch
//
//	# Inspect the run history
//	salvage ledger list --since 24h
package main

func main() {
	Execute()
}
