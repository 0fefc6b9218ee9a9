package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the engine's current released version.
// Override at build time:
//
//	go build -ldflags "-X github.com/hrygo/shopdesk/internal/version.Version=v0.3.0"
var Version = "0.3.0"

// DevVersion is reported in dev and demo mode.
var DevVersion = Version + "-dev"

// GitCommit is the git commit hash at build time.
var GitCommit = "unknown"

// BuildTime is the build timestamp in RFC3339 format.
var BuildTime = "unknown"

// CorpusSchema is the version of the sqlite/postgres corpus tables written by `shopdesk import`.
const CorpusSchema = "1.1.0"

// MinCorpusSchema is the oldest corpus schema the drivers can still read.
const MinCorpusSchema = "1.0.0"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// IsVersionGreaterOrEqualThan returns true if version is greater than or equal to target.
// Invalid versions compare as smaller than any valid one.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(canonical(version), canonical(target)) > -1
}

// IsCorpusSchemaSupported reports whether a stored schema version can be read by this build.
func IsCorpusSchemaSupported(schema string) bool {
	if !semver.IsValid(canonical(schema)) {
		return false
	}
	if semver.Major(canonical(schema)) != semver.Major(canonical(CorpusSchema)) {
		return false
	}
	return IsVersionGreaterOrEqualThan(schema, MinCorpusSchema)
}

// String returns the version string with optional commit hash.
func String() string {
	v := Version
	if GitCommit != "" && GitCommit != "unknown" {
		shortCommit := GitCommit
		if len(shortCommit) > 8 {
			shortCommit = shortCommit[:8]
		}
		v = fmt.Sprintf("%s-%s", v, shortCommit)
	}
	return v
}

// StringFull returns the complete version information including build metadata.
func StringFull() string {
	parts := []string{"Version=" + String(), "CorpusSchema=" + CorpusSchema}
	if BuildTime != "" && BuildTime != "unknown" {
		parts = append(parts, "BuildTime="+BuildTime)
	}
	return strings.Join(parts, " ")
}
