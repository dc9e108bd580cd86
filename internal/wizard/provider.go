// Package wizard registers cloud backends with rclone by driving the
// interactive "rclone config" session through scripted prompt transcripts,
// one per supported storage provider.
package wizard

import (
	"fmt"
	"strings"
)

// Provider identifies one of the supported storage backends.
type Provider string

// Supported providers.
const (
	ProviderGDrive    Provider = "gdrive"
	ProviderDropbox   Provider = "dropbox"
	ProviderOneDrive  Provider = "onedrive"
	ProviderBox       Provider = "box"
	ProviderNextcloud Provider = "nextcloud"
)

// Providers returns all supported providers in display order.
func Providers() []Provider {
	return []Provider{ProviderGDrive, ProviderDropbox, ProviderOneDrive, ProviderBox, ProviderNextcloud}
}

// ProviderNames returns the provider names as strings, for CLI help and
// argument completion.
func ProviderNames() []string {
	ps := Providers()
	names := make([]string, len(ps))

	for i, p := range ps {
		names[i] = string(p)
	}

	return names
}

// ParseProvider converts a user-supplied name into a Provider.
// Matching is case-insensitive.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := transcripts[p]; !ok {
		return "", fmt.Errorf("%w %q (choose one of %s)", ErrUnknownProvider, s, strings.Join(ProviderNames(), ", "))
	}

	return p, nil
}

func (p Provider) String() string {
	return string(p)
}
