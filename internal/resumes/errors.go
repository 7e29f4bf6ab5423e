package resumes

import (
	"fmt"

	"resume-intel/internal/shared/apperr"
)

// ErrNotFound is returned for resumes that do not exist or belong to someone else.
var ErrNotFound = fmt.Errorf("resume %w", apperr.ErrNotFound)
