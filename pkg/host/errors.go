package host

import "errors"

// ErrUpdateStorm is returned by Flush when renders keep requesting updates
// for more passes than the scheduler allows. The remaining requests stay
// queued.
var ErrUpdateStorm = errors.New("host: update storm, too many flush passes")
