package utils

// applicationVersion is overridden at build time via -ldflags.
var applicationVersion = "dev"

// GetApplicationVersion returns the application version string.
func GetApplicationVersion() string {
	return applicationVersion
}
