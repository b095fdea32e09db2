package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ArtifactKey returns the storage key of one artifact of a session's latest analysis
func (r *CacheKeyStruct) ArtifactKey(sessionID, artifact string) string {
	return fmt.Sprintf("analysis:%s:%s", sessionID, artifact)
}

var CacheKey = NewCacheKeyStruct()
