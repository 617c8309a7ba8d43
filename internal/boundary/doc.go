// Package boundary wraps the mounting of compiled panels. It is the second,
// independent safety net after the compiler: even a panel that compiled
// cleanly can carry the wrong shape or blow up while its expressions are
// evaluated, and those failures must land on the owning entry instead of
// escaping into the host.
//
// Shape violations are reported as validation errors, not import errors,
// because the compiler already succeeded; the defect only surfaces at mount
// time. Runtime faults that escape a mounted panel are attributed with a
// best-effort heuristic (recency of mount first, a path fragment in the
// stack trace as tiebreaker); a fault that matches neither signal is logged
// and dropped rather than guessed.
package boundary
