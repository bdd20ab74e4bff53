package resolver

import "time"

// Config governs the import sandbox: every resolved path must canonicalize
// to a descendant of one of AllowedRoots, reached from BaseDir.
type Config struct {
	AllowedRoots []string
	BaseDir      string
	ReadTimeout  time.Duration
}

// DefaultConfig restricts imports to the current directory with a 30s
// read timeout, matching the original resolver's hardcoded timeout.
func DefaultConfig() Config {
	return Config{
		AllowedRoots: []string{"."},
		BaseDir:      ".",
		ReadTimeout:  30 * time.Second,
	}
}

var sensitiveLocations = []string{
	"/etc/", "/proc/", "/sys/", "/root/.ssh/", "/.ssh/",
	"/var/run/secrets/", "/.aws/", "/.gnupg/",
	"C:\\Windows\\", "C:\\Program Files\\",
}
