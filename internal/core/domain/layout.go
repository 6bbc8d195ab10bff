package domain

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "ilview.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// AssemblyExtensions are the file extensions treated as managed binaries.
var AssemblyExtensions = []string{".dll", ".exe", ".winrt", ".netmodule"}

// SkippedDirectories are never descended into when searching for assemblies.
var SkippedDirectories = map[string]bool{
	".git":             true,
	"node_modules":     true,
	"bower_components": true,
}
