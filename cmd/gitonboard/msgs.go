package main

// Message constants
const (
	MsgRootShort = "Infer migration configuration for onboarding a repository"
	MsgRootLong  = `gitonboard compares a source repository against an already-synced
destination tree and infers onboarding configuration: which origin files
to migrate, which transformations to apply, and which destination paths
to leave alone.`

	MsgGenerateShort   = "Generate an onboarding config from origin and destination"
	MsgGenerateLong    = "Fetch the origin at the requested version, compare it against the destination tree, and emit the inferred onboarding configuration.\n\nWithout -w the config is printed to stdout."
	MsgGenerateExample = `  gitonboard generate --origin https://example/repo --current-version 1.2
  gitonboard generate --origin https://example/repo --current-version 1.2 --destination ./third_party/repo -w`
)
