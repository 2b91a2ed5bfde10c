package version

// Set at build time with -ldflags "-X cryptodao/internal/platform/version.Version=...".
var (
	Version   = "dev"
	BuildTime = "unknown"
)
