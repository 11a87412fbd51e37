package family

import "errors"

var (
	ErrMissingUserID       = errors.New("user id is required")
	ErrMissingRelativeID   = errors.New("relative id is required")
	ErrMissingRelationship = errors.New("relationship is required")
	ErrInvalidAccessLevel  = errors.New("access level must be full, limited or none")
	ErrMissingCondition    = errors.New("condition name is required")
	ErrDuplicateRelation   = errors.New("family relation already exists")
)
