package config

import (
	"fmt"
	"strings"
)

const classMessagesPrefix = "class:"
const classMessagesSuffix = ":messages"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// IdentitySessionKey returns the cache key holding the owner uid of an issued identity token.
func (r *CacheKeyStruct) IdentitySessionKey(jti string) string {
	return fmt.Sprintf("identity:session:%s", jti)
}

// LoginAttemptsKey returns the counter key used to rate-limit login attempts per client.
func (r *CacheKeyStruct) LoginAttemptsKey(clientIP string) string {
	return fmt.Sprintf("ratelimit:login:%s", clientIP)
}

// ClassMessagesChannel returns the Redis PubSub channel announcing new messages for a class.
func (r *CacheKeyStruct) ClassMessagesChannel(classID string) string {
	return classMessagesPrefix + classID + classMessagesSuffix
}

// ClassMessagesPattern matches every class message channel.
func (r *CacheKeyStruct) ClassMessagesPattern() string {
	return classMessagesPrefix + "*" + classMessagesSuffix
}

// ClassIDFromChannel extracts the class id from a ClassMessagesChannel name.
func (r *CacheKeyStruct) ClassIDFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, classMessagesPrefix) || !strings.HasSuffix(channel, classMessagesSuffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(channel, classMessagesPrefix), classMessagesSuffix)
	if id == "" {
		return "", false
	}
	return id, true
}

var CacheKey = NewCacheKeyStruct()
