package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

// knownKeys are the valid top-level keys in the config file.
var knownKeys = map[string]bool{
	// Sync settings
	"remote": true, "sync_cooldown": true, "rclone_args": true, "unison_args": true,
	"poll_interval": true,
	// Wizard settings
	"prompt_timeout": true,
	// Logging settings
	"log_level": true, "log_format": true,
	// Network settings
	"connectivity_address": true, "connectivity_timeout": true,
}

// legacyKeyNames maps the dashed key names of the old YAML config to their
// TOML equivalents, so users who copy an old file get a precise hint.
var legacyKeyNames = map[string]string{
	"sync-cooldown": "sync_cooldown",
	"rclone-args":   "rclone_args",
	"unison-args":   "unison_args",
}

// knownKeysList is the sorted slice form of knownKeys for Levenshtein
// matching. Sorted for deterministic suggestions on ties.
var knownKeysList = func() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}

	return sortedCopy(keys)
}()

// unknownKeyErrors inspects TOML metadata for undecoded keys and returns one
// error per unknown key, with a "did you mean?" suggestion when one is close.
func unknownKeyErrors(md *toml.MetaData) []error {
	var errs []error

	for _, key := range md.Undecoded() {
		errs = append(errs, unknownKeyError(key.String()))
	}

	return errs
}

func unknownKeyError(keyStr string) error {
	top := strings.SplitN(keyStr, ".", 2)[0]

	if replacement, ok := legacyKeyNames[top]; ok {
		return fmt.Errorf("unknown config key %q (did you mean %q?)", keyStr, replacement)
	}

	if suggestion := closestMatch(top, knownKeysList); suggestion != "" {
		return fmt.Errorf("unknown config key %q (did you mean %q?)", keyStr, suggestion)
	}

	return fmt.Errorf("unknown config key %q", keyStr)
}

// closestMatch returns the known key with the smallest edit distance to
// unknown, or "" if nothing is within maxLevenshteinDistance.
func closestMatch(unknown string, known []string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, k := range known {
		d := levenshtein(unknown, k)
		if d < bestDist {
			bestDist = d
			best = k
		}
	}

	if bestDist <= maxLevenshteinDistance {
		return best
	}

	return ""
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}

	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := range len(a) {
		curr[0] = i + 1

		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func sortedCopy(items []string) []string {
	out := append([]string(nil), items...)
	sort.Strings(out)

	return out
}
