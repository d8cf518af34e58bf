package integration

import (
	"fmt"
	"strings"
	"time"
)

// TestUser generates unique test user credentials using timestamp
func TestUser(suffix string) (email, password string) {
	ts := time.Now().UnixNano()
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	password = "TestPassword123!"
	return
}

// ExtractResetParams pulls the uid and token path segments out of a reset link
// shaped like {frontend}/api/user/reset-password/{uid}/{token}/
func ExtractResetParams(resetLink string) (uid, token string) {
	trimmed := strings.TrimSuffix(resetLink, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return "", ""
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}
