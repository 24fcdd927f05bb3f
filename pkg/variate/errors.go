package variate

import (
	"errors"
	"fmt"
)

// ErrNoSource is returned when a Generator is constructed without a source
var ErrNoSource = errors.New("no random source configured")

// DomainError is returned when a uniform draw cannot be fed into the Box-Muller transform
type DomainError struct {
	Source string
	Value  float64
}

func (d *DomainError) Error() string {
	return fmt.Sprintf("source %s produced %v, outside the open interval (0,1)", d.Source, d.Value)
}

// StateMismatchError is returned by a source asked to load a snapshot it did not produce
type StateMismatchError struct {
	Want   string
	Got    string
	Reason string
}

func (s *StateMismatchError) Error() string {
	if s.Reason != "" {
		return fmt.Sprintf("cannot load %s state into %s source: %s", s.Got, s.Want, s.Reason)
	}

	return fmt.Sprintf("cannot load %s state into %s source", s.Got, s.Want)
}

// CheckSnapshot returns a *StateMismatchError if the snapshot was not produced by a source named want
func CheckSnapshot(want string, snapshot Snapshot) error {
	if snapshot.Source != want {
		return &StateMismatchError{
			Want: want,
			Got:  snapshot.Source,
		}
	}

	return nil
}
