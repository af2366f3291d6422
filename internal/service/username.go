package service

import (
	"fmt"
	"strings"
	"time"
)

// usernameFromProfile derives a username for Google signups from the
// display name, falling back to the email local part.
func usernameFromProfile(name, email string) string {
	username := strings.Split(email, "@")[0]
	if name != "" {
		username = strings.ReplaceAll(strings.ToLower(name), " ", "_")
	}
	if username == "" {
		username = fmt.Sprintf("user%d", time.Now().UnixNano()%100000)
	}
	return username
}
