package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	for _, name := range []string{"gdrive", "GDrive", " dropbox ", "onedrive", "box", "NextCloud"} {
		p, err := ParseProvider(name)
		require.NoError(t, err, name)
		assert.Contains(t, Providers(), p)
	}

	_, err := ParseProvider("s3")
	require.ErrorIs(t, err, ErrUnknownProvider)
	assert.Contains(t, err.Error(), "gdrive, dropbox, onedrive, box, nextcloud")
}

func TestProviders_AllHaveTranscripts(t *testing.T) {
	assert.Len(t, transcripts, len(Providers()))

	for _, p := range Providers() {
		assert.NotEmpty(t, transcripts[p], p.String())
	}
}

func TestProviderNames(t *testing.T) {
	assert.Equal(t, []string{"gdrive", "dropbox", "onedrive", "box", "nextcloud"}, ProviderNames())
}
