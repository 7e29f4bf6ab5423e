package conversations

import (
	"fmt"

	"resume-intel/internal/shared/apperr"
)

// ErrNotFound is returned for conversations that do not exist or belong to someone else.
var ErrNotFound = fmt.Errorf("conversation %w", apperr.ErrNotFound)
