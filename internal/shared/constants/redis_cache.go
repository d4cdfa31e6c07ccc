package constants

import "time"

// Redis key layout for authportal
// Pattern: authportal:{module}:{entity}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_SHORT   = 6 * time.Hour    // 6 hours - for user profiles
	TTL_DYNAMIC_MEDIUM = 30 * time.Minute // 30 minutes - for flow snapshots
	TTL_REALTIME_SHORT = 30 * time.Second // 30 seconds - for busy locks
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "authportal"
)

// ================== FLOWS MODULE ==================

const (
	CACHE_KEY_FLOW     = CACHE_PREFIX + ":flows:" // + kind:flow-id
	CACHE_SUFFIX_BUSY  = ":busy"
	TTL_FLOW_SNAPSHOT  = TTL_DYNAMIC_MEDIUM
	TTL_FLOW_BUSY_LOCK = TTL_REALTIME_SHORT
)

// ================== PROFILE MODULE ==================

const (
	CACHE_KEY_USER_PROFILE = CACHE_PREFIX + ":profile:user:" // + user-id
	TTL_USER_PROFILE       = TTL_STATIC_SHORT
)

// ================== GATEWAY MODULE ==================

const (
	CACHE_KEY_BEARER_TOKEN = CACHE_PREFIX + ":gateway:token:" // + session fingerprint
)

// ================== RATE LIMIT MODULE ==================

const (
	CACHE_KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + ip:type
)

// ================== HELPER FUNCTIONS ==================

func BuildFlowKey(kind, flowID string) string {
	return CACHE_KEY_FLOW + kind + ":" + flowID
}

func BuildFlowBusyKey(kind, flowID string) string {
	return BuildFlowKey(kind, flowID) + CACHE_SUFFIX_BUSY
}

func BuildUserProfileKey(userID string) string {
	return CACHE_KEY_USER_PROFILE + userID
}

func BuildBearerTokenKey(fingerprint string) string {
	return CACHE_KEY_BEARER_TOKEN + fingerprint
}

func BuildRateLimitKey(clientIP, limitType string) string {
	return CACHE_KEY_RATE_LIMIT + clientIP + ":" + limitType
}
