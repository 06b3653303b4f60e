package config

const (
	defaultDataDir        = "~/.local/share/patchforge"
	defaultLogDir         = "~/.local/share/patchforge/logs"
	defaultCatalogDB      = "~/.local/share/patchforge/catalog.db"
	defaultExportDir      = "~/.local/share/patchforge/exports"
	defaultObservationDir = "~/.local/share/patchforge/observations"

	defaultVisionBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultVisionModel          = "google/gemini-3-flash-preview"
	defaultVisionReferer        = "https://github.com/patchforge/patchforge"
	defaultVisionTitle          = "Patchforge Rig Detector"
	defaultVisionTimeoutSeconds = 60

	defaultVariations    = 2
	defaultIntent        = "ambient"
	defaultLayoutProfile = "studio"
	defaultRowWidthHP    = 104

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			CatalogDB: defaultCatalogDB,
			ExportDir: defaultExportDir,
			ObservDir: defaultObservationDir,
		},
		Vision: Vision{
			BaseURL:        defaultVisionBaseURL,
			Model:          defaultVisionModel,
			Referer:        defaultVisionReferer,
			Title:          defaultVisionTitle,
			TimeoutSeconds: defaultVisionTimeoutSeconds,
		},
		Generation: Generation{
			Variations:    defaultVariations,
			Intent:        defaultIntent,
			LayoutProfile: defaultLayoutProfile,
			RowWidthHP:    defaultRowWidthHP,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
