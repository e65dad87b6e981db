package usecase

import "fmt"

// ErrPersistence indicates an infrastructure/repository failure inside a use case
var ErrPersistence = fmt.Errorf("chat use case persistence error")

// conversationCacheKey is the redis key for cached conversation metadata.
func conversationCacheKey(conversationID string) string {
	return "chat:conversation:" + conversationID
}
