package manifest

import (
	"strings"
	"testing"
)

func TestManifestVersionPolicy(t *testing.T) {
	if !IsSupportedManifestVersion(CurrentManifestVersion) {
		t.Fatalf("current version must be supported")
	}
	if err := checkManifestVersion("1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := checkManifestVersion(""); err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected missing-version error, got %v", err)
	}
	err := checkManifestVersion("v0")
	if err == nil || !strings.Contains(err.Error(), `"v0"`) || !strings.Contains(err.Error(), SupportedManifestVersionsCSV()) {
		t.Fatalf("expected unsupported-version error, got %v", err)
	}
}
