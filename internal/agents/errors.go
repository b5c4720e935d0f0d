package agents

import "errors"

// Ошибки агентов.
var (
	// ErrUnknownAgent — агент с таким именем не зарегистрирован.
	ErrUnknownAgent = errors.New("unknown agent")
)
