package instance

import "github.com/angelmondragon/storefront-backend/pkg/env"

// GetID identifies the running api process in logs. DYNO wins over
// HOSTNAME; local runs fall back to "local".
func GetID() string {
	return env.First("local", "DYNO", "HOSTNAME")
}
