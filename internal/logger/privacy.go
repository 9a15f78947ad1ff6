package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
)

const defaultHashSalt = "default-salt-change-in-production"

var hashSalt = defaultHashSalt

// InitHashSalt loads the hashing salt from LOG_HASH_SALT.
// In production, set LOG_HASH_SALT environment variable.
func InitHashSalt() {
	if salt := os.Getenv("LOG_HASH_SALT"); salt != "" {
		hashSalt = salt
		return
	}
	hashSalt = defaultHashSalt
	Log.Warn().Msg("LOG_HASH_SALT not set, using default salt")
}

// InitHashSaltForTesting sets a fixed salt.
func InitHashSaltForTesting(salt string) {
	hashSalt = salt
}

// HashUserID creates a privacy-preserving hash of a user ID.
// This allows tracking user actions without exposing actual user IDs.
func HashUserID(userID int64) string {
	return hashID(userID)
}

// HashChatID creates a privacy-preserving hash of a chat ID.
func HashChatID(chatID int64) string {
	return hashID(chatID)
}

func hashID(id int64) string {
	data := fmt.Sprintf("%d:%s", id, hashSalt)
	hash := sha256.Sum256([]byte(data))
	// First 8 characters for readability
	return hex.EncodeToString(hash[:])[:8]
}

// SanitizeURL strips credentials, query and fragment from a URL so it can be
// logged. Unparseable input is replaced with a length marker.
func SanitizeURL(raw string) string {
	if raw == "" {
		return "<empty>"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Sprintf("<invalid url: %d chars>", len(raw))
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
