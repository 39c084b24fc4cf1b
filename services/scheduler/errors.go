package scheduler

import "fmt"

var (
	// the same class shows up more than once on the remote page, a
	// data problem on the site's side
	ErrIntegrity = fmt.Errorf("more than one class matches the requested details")

	// the class starts soon enough that its slot should already be
	// listed, yet it is not
	ErrSlotWindow = fmt.Errorf("class should be open for booking but is not listed")

	// no active reservation to cancel
	ErrNotFound = fmt.Errorf("no reservation found for the requested details")
)
