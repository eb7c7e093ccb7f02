package services

import "errors"

// Analysis service errors
var (
	ErrNoCommonBuildings = errors.New("no buildings present in both sheets")
	ErrBuildingNotFound  = errors.New("building not found")
)
