package environment

import "strings"

// Environment names the deployment stage the process runs in.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Parse normalizes short and long environment names. Unknown values fall back
// to Development so a typo never enables production behavior silently.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	default:
		return Development
	}
}

// IsProduction reports whether the environment is production.
func (e Environment) IsProduction() bool { return e == Production }

func (e Environment) String() string { return string(e) }
