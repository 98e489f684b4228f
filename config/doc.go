// Package config loads the client configuration from environment variables
// and translates it into armory and observe configs.
package config
