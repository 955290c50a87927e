package manifest

import (
	"fmt"
	"slices"
	"strings"
)

// CurrentManifestVersion is the manifestVersion new manifests should declare.
const CurrentManifestVersion = "1"

var supportedManifestVersions = []string{CurrentManifestVersion}

// IsSupportedManifestVersion reports whether Load accepts v.
func IsSupportedManifestVersion(v string) bool {
	return slices.Contains(supportedManifestVersions, v)
}

// SupportedManifestVersionsCSV lists the accepted versions for messages.
func SupportedManifestVersionsCSV() string {
	return strings.Join(supportedManifestVersions, ", ")
}

func checkManifestVersion(v string) error {
	if IsSupportedManifestVersion(v) {
		return nil
	}
	if v == "" {
		return fmt.Errorf("manifestVersion is required (current: %s)", CurrentManifestVersion)
	}
	return fmt.Errorf("unsupported manifestVersion %q (supported: %s)", v, SupportedManifestVersionsCSV())
}
