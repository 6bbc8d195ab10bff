package app

// SplitArgs exposes splitArgs for testing.
var SplitArgs = splitArgs
