package version

// Build holds the build identifier, injected via -ldflags. Default "dev".
var Build = "dev"

// Commit is the source revision, injected via -ldflags.
var Commit = ""

// String renders Build with the commit when known.
func String() string {
	if Commit == "" {
		return Build
	}
	return Build + " (" + Commit + ")"
}
