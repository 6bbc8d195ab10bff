package ports

// Fingerprinter computes content fingerprints of assembly files.
//
//go:generate mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// Fingerprint returns a stable digest of the file content at path.
	Fingerprint(path string) (string, error)
}

// AssemblyFinder discovers managed binaries on disk.
type AssemblyFinder interface {
	// Find returns the assemblies below root, sorted by path.
	Find(root string) ([]string, error)
	// Check cleans a user-supplied path against cwd and verifies it is readable.
	Check(raw, cwd string) (string, error)
}
