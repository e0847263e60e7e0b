package model

import "errors"

// Sentinel domain errors.
var (
	ErrReportVersion   = errors.New("unsupported report schema version")
	ErrDuplicateUpload = errors.New("results file already ingested for this race")
	ErrNothingInserted = errors.New("no results with a valid chip time")
	ErrInvalidDistance = errors.New("distance must be a finite, non-negative number of kilometres")
)
