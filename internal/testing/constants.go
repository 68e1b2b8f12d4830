// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package testing

import (
	"time"
)

// ShortWait is how long a test blocks on something it expects NOT to
// happen; the suite always pays this delay in full before moving on,
// so it is kept small.
const ShortWait = 50 * time.Millisecond

// LongWait is the timeout for something that should already have
// happened or happens almost immediately. A passing test never sleeps
// for it; it only bounds how long a genuinely broken run hangs before
// failing.
const LongWait = 10 * time.Second
