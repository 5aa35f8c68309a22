package store

import (
	"context"
	"errors"
	"strings"

	"github.com/autobrief/autobrief/internal/newsletter"
)

// ErrUserNotFound is returned when no document exists for a user.
var ErrUserNotFound = errors.New("user not found")

// UserStore loads and saves per-user group documents. SaveGroups replaces
// the whole document; there is no partial update and no transactional
// guarantee across concurrent callers.
type UserStore interface {
	ListUsers(ctx context.Context) ([]string, error)
	LoadGroups(ctx context.Context, userEmail string) (*newsletter.UserData, error)
	SaveGroups(ctx context.Context, userEmail string, data *newsletter.UserData) error
}

// userFileName maps a user email to its document file name. Dots become
// underscores and the at sign becomes a double underscore, so
// "john.doe@gmail.com" is stored as "john_doe__gmail_com.json".
//
// The mapping conflates dots and underscores: "john_doe@gmail.com" and
// "john.doe@gmail.com" share a file name, and the inverse reads both back
// as "john.doe@gmail.com". Known limitation; addresses whose local part
// contains an underscore are not supported.
func userFileName(email string) string {
	s := strings.ReplaceAll(email, ".", "_")
	s = strings.ReplaceAll(s, "@", "__")
	return s + ".json"
}

// userEmailFromFile is the inverse of userFileName, up to the dot and
// underscore conflation described there.
func userEmailFromFile(name string) string {
	s := strings.TrimSuffix(name, ".json")
	s = strings.ReplaceAll(s, "_", ".")
	return strings.Replace(s, "..", "@", 1)
}
