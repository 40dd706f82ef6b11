// Package storage writes the run's output artifacts. Writes are atomic and
// happen only after a fully successful fetch; a run that fails part-way
// leaves no output at all rather than a silently truncated file.
package storage
