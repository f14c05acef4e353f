package bot

import "github.com/pkg/errors"

var (
	ErrControllerNotFound = errors.New("controller not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadySubscribed  = errors.New("already subscribed")
)
