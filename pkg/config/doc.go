// Package config loads typed configuration structs from environment
// variables (and an optional .env file), caching each type for process
// lifetime so components can load their own settings independently.
package config
