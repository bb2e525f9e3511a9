package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DisabledPushToken is the sentinel stored when a user has turned
// push notifications off.
const DisabledPushToken = "x"

// User is the engagement-relevant projection of an account. Bookmarked
// mirrors listing-side stats.bookmarked membership; Alerted records
// listings the user has already been pushed a notification about.
type User struct {
	ID          uuid.UUID
	FirstName   string
	LastName    string
	Email       string
	CountryCode string
	Phone       string
	City        string
	PushToken   *string
	Bookmarked  []uuid.UUID
	Alerted     []uuid.UUID
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

func (u *User) CanReceivePush() bool {
	if u == nil || u.PushToken == nil {
		return false
	}
	token := strings.TrimSpace(*u.PushToken)
	return token != "" && token != DisabledPushToken
}
