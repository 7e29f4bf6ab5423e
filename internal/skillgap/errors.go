package skillgap

import (
	"fmt"

	"resume-intel/internal/shared/apperr"
)

// ErrNotFound is returned for analyses that do not exist or belong to someone else.
var ErrNotFound = fmt.Errorf("skill gap analysis %w", apperr.ErrNotFound)
