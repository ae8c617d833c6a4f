package adapters

import (
	"strings"

	"github.com/amaumene/gostremiomux/internal/config"
)

const defaultTorrentioURL = "https://torrentio.strem.fun"

// torrentioOptions are the upstream configuration keys passed through in the
// path, in the order Torrentio writes them.
var torrentioOptions = []string{"providers", "sort", "qualityfilter", "language", "limit"}

// NewTorrentio builds a Stremio adapter pre-pointed at Torrentio. The caller
// address is always forwarded since Torrentio keys rate limits on it.
func NewTorrentio(ac config.AdapterConfig, deps Deps) (Adapter, error) {
	base := defaultTorrentioURL
	if deps.Config != nil && deps.Config.TorrentioURL != "" {
		base = deps.Config.TorrentioURL
	}
	base = ac.Option("baseUrl", base)

	return newStremioClient(ac.ID, torrentioManifestURL(base, ac.Options), true, deps)
}

func torrentioManifestURL(base string, options map[string]string) string {
	base = strings.TrimSuffix(base, "/")

	var parts []string
	for _, key := range torrentioOptions {
		if v := strings.TrimSpace(options[key]); v != "" {
			parts = append(parts, key+"="+v)
		}
	}
	if len(parts) == 0 {
		return base + "/manifest.json"
	}
	return base + "/" + strings.Join(parts, "|") + "/manifest.json"
}
