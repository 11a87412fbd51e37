package risk

import "errors"

var (
	ErrMissingUserID = errors.New("risk: user id required")
	ErrScorerFailed  = errors.New("risk: scoring service unavailable")
)
