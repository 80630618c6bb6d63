package redis

import "fmt"

// Key prefix for all session artifacts
const keyPrefix = "bwgenius:session"

// artifactKey returns the Redis key for a session artifact
func artifactKey(key string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, key)
}

// artifactPattern widens a caller glob to the prefixed keyspace
func artifactPattern(pattern string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, pattern)
}
