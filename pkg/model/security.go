package model

// SecurityState bundles caller-supplied JSON documents. Values are opaque and
// stored verbatim after trimming; nil means absent.
type SecurityState struct {
	Identity         *string `json:"identity,omitempty"`
	Delegations      *string `json:"delegations,omitempty"`
	RevocationQueue  *string `json:"revocation_queue,omitempty"`
	AuditLog         *string `json:"audit_log,omitempty"`
	FailedFlushQueue *string `json:"failed_flush_queue,omitempty"`
}

// Clone returns a copy that shares no pointers with s.
func (s SecurityState) Clone() SecurityState {
	return SecurityState{
		Identity:         cloneString(s.Identity),
		Delegations:      cloneString(s.Delegations),
		RevocationQueue:  cloneString(s.RevocationQueue),
		AuditLog:         cloneString(s.AuditLog),
		FailedFlushQueue: cloneString(s.FailedFlushQueue),
	}
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// FlushResult partitions a revocation batch.
type FlushResult struct {
	Flushed []string `json:"flushed"`
	Failed  []string `json:"failed"`
}
