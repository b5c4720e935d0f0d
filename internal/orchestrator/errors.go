package orchestrator

import "errors"

var (
	// ErrCaseNotFound — дело не найдено ни в памяти, ни в снапшотах.
	ErrCaseNotFound = errors.New("case not found")

	// ErrRunInProgress — по делу уже идёт прогон; параллельные прогоны
	// отклоняются, а не ставятся в очередь.
	ErrRunInProgress = errors.New("orchestrator run already in progress")
)
