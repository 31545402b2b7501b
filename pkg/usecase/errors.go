package usecase

import "github.com/m-mizutani/goerr/v2"

var (
	ErrEmptyTitle       = goerr.New("risk title must not be empty")
	ErrEmptyDescription = goerr.New("risk description must not be empty")
	ErrEmptyCategory    = goerr.New("category name must not be empty")
)
