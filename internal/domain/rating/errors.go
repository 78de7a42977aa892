package rating

import "errors"

// ErrOutOfOrder reports a round history that violates the chronological
// ordering precondition. The replay is path-dependent, so a shuffled input
// would produce a plausible-looking but meaningless rating.
var ErrOutOfOrder = errors.New("round history out of order")
