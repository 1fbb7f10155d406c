package handler

import "errors"

var (
	ErrInvalidTileAddress = errors.New("tile address is outside the world at this zoom")
	ErrInvalidQuery       = errors.New("invalid query parameters")
)
