package statelock

import "github.com/rs/zerolog"

// Logger is the package-level logger used for debug diagnostics of
// state transitions (reuse of the live state, waiting, becoming live,
// advancing, clearing), plus an error line when a queued state cannot be
// produced. Tear-down itself is not logged. It
// defaults to a no-op logger; embedding applications can replace it,
// matching the teacher's package-level swappable-variable test-seam
// style (e.g. catrate's timeNow/timeNewTicker).
var Logger zerolog.Logger = zerolog.Nop()
