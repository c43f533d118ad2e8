// Package version holds the release version of emailcrawl.
package version

// Current is the semantic version of this build, without a "v" prefix.
const Current = "0.3.1"
