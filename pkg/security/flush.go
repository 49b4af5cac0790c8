package security

import (
	"strings"

	"cidfeed/pkg/model"
)

// FailPrefix marks identifiers that the flush stub always rejects.
const FailPrefix = "fail-"

// FlushRevocationQueue partitions ids into flushed and failed using string
// rules only: blank ids, repeats within the batch and ids prefixed with
// FailPrefix fail. Order is preserved and nothing is contacted.
func FlushRevocationQueue(ids []string) model.FlushResult {
	res := model.FlushResult{Flushed: []string{}, Failed: []string{}}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		key := strings.TrimSpace(id)
		if key == "" {
			res.Failed = append(res.Failed, id)
			continue
		}
		if _, dup := seen[key]; dup {
			res.Failed = append(res.Failed, id)
			continue
		}
		seen[key] = struct{}{}
		if strings.HasPrefix(key, FailPrefix) {
			res.Failed = append(res.Failed, id)
			continue
		}
		res.Flushed = append(res.Flushed, id)
	}
	return res
}
