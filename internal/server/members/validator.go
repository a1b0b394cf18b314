package members

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/talkroom/talkroom/internal/common"
)

var memberIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]{5,15}$`)

const minPasswordLen = 8

// ValidateMemberID checks that id is 5-15 alphanumeric characters.
func ValidateMemberID(id string) error {
	if !memberIDPattern.MatchString(id) {
		return fmt.Errorf("%w: member id must be 5-15 alphanumeric characters", common.ErrValidation)
	}
	return nil
}

// ValidatePassword checks the password policy: at least 8 characters,
// at least one uppercase letter and at least one digit.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLen)
	}

	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasDigit {
		return fmt.Errorf("%w: password must contain an uppercase letter and a digit", common.ErrValidation)
	}
	return nil
}
