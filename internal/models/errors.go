package models

import "errors"

var (
	ErrValidation   = errors.New("invalid request parameter")
	ErrNoTender     = errors.New("requested tender does not exist")
	ErrNoExperience = errors.New("requested experience does not exist")
	ErrMatchTimeout = errors.New("matching deadline exceeded")
)
