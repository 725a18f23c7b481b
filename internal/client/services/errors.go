package services

import "errors"

// ErrNotLoggedIn is returned by entry operations when no session exists.
// No request is sent in that case.
var ErrNotLoggedIn = errors.New("not logged in")
