package domain

import (
	"encoding/json"
	"time"
)

// CacheEnvelope is the on-disk shape of one cache file: the opaque payload
// plus the moment it was written. Filenames are the hex digest of the
// original key, so the envelope never needs to repeat it.
type CacheEnvelope struct {
	Data     json.RawMessage `json:"data"`
	CachedAt time.Time       `json:"cached_at"`
}

// CacheSettings configures the file cache from the config file.
type CacheSettings struct {
	TTL string `yaml:"ttl"`
	Dir string `yaml:"dir,omitempty"`
}

// TTLDuration parses the configured TTL, falling back to one hour.
func (s CacheSettings) TTLDuration() time.Duration {
	if d, err := time.ParseDuration(s.TTL); err == nil && d > 0 {
		return d
	}
	return time.Hour
}
