package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrEmptyWords      = fmt.Errorf("no words have been found")
	ErrNameTaken       = fmt.Errorf("name already taken")
	ErrNameInvalid     = fmt.Errorf("invalid name")
	ErrUserNotFound    = fmt.Errorf("user not found")
	ErrSelfTarget      = fmt.Errorf("cannot start a private chat with yourself")
	ErrNoActiveContext = fmt.Errorf("no active context")
	ErrPeerOffline     = fmt.Errorf("peer went offline")
)
