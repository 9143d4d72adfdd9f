// ABOUTME: Build and product identification constants
// ABOUTME: Reported by the version command and in startup logs
package version

const (
	// Version is the release version, overridden at link time with -ldflags.
	Version = "0.3.0"

	// Product is the human readable product name.
	Product = "Nightchorus Soundscape Player"

	// Manufacturer identifies who ships the binary.
	Manufacturer = "Nightchorus"
)

// String returns "Product vVersion".
func String() string {
	return Product + " v" + Version
}
