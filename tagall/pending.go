package tagall

import "sync"

// PendingRequests maps a user to the group awaiting their next private message
type PendingRequests struct {
	mu       sync.Mutex
	requests map[int64]int64 // map[userID]groupID
}

func NewPendingRequests() *PendingRequests {
	return &PendingRequests{
		requests: make(map[int64]int64),
	}
}

// Start records that userID is going to send announcement content for groupID.
// An unresolved request of the same user is overwritten.
func (p *PendingRequests) Start(userID, groupID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests[userID] = groupID
}

// Take returns the target group of userID and removes the request in one step
func (p *PendingRequests) Take(userID int64) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	groupID, ok := p.requests[userID]
	if ok {
		delete(p.requests, userID)
	}
	return groupID, ok
}

func (p *PendingRequests) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}
