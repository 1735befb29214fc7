package config

const (
	defaultDataDir           = "~/.local/share/marquee"
	defaultBaseURL           = "https://wtwcinemas.co.uk"
	defaultVenueID           = "st-austell"
	defaultVenueName         = "St Austell"
	defaultRequestTimeout    = 30
	defaultUserAgent         = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	defaultTMDBBaseURL       = "https://api.themoviedb.org/3"
	defaultTMDBLanguage      = "en-GB"
	defaultTMDBImageBaseURL  = "https://image.tmdb.org/t/p/w342"
	defaultCacheRetention    = 30
	defaultEnrichWorkers     = 4
	defaultRequestsPerSecond = 5.0
	defaultDataFile          = "whats_on.json"
	defaultFingerprintFile   = "whats_on.fingerprint"
	defaultHTMLFile          = "index.html"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Source: Source{
			BaseURL:        defaultBaseURL,
			VenueID:        defaultVenueID,
			VenueName:      defaultVenueName,
			RequestTimeout: defaultRequestTimeout,
			UserAgent:      defaultUserAgent,
		},
		TMDB: TMDB{
			BaseURL:      defaultTMDBBaseURL,
			Language:     defaultTMDBLanguage,
			ImageBaseURL: defaultTMDBImageBaseURL,
		},
		Cache: Cache{
			RetentionDays: defaultCacheRetention,
		},
		Enrichment: Enrichment{
			Workers:           defaultEnrichWorkers,
			RequestsPerSecond: defaultRequestsPerSecond,
		},
		Output: Output{
			DataFile:        defaultDataFile,
			FingerprintFile: defaultFingerprintFile,
			HTMLFile:        defaultHTMLFile,
			RenderHTML:      true,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
