// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import "time"

// TimeSource provides the notion of current time used to bound how far in
// the future a block timestamp may be.  Abstracting it keeps validation
// deterministic under test and leaves room for a network-adjusted clock.
type TimeSource interface {
	// AdjustedTime returns the current time.
	AdjustedTime() time.Time
}

// systemTimeSource reads the local system clock.
type systemTimeSource struct{}

// AdjustedTime returns the current system time.
func (systemTimeSource) AdjustedTime() time.Time {
	return time.Now()
}

// NewSystemTimeSource returns a TimeSource backed by the local system
// clock.
func NewSystemTimeSource() TimeSource {
	return systemTimeSource{}
}
