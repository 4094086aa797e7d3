package keep

import "github.com/goliatone/go-keep/record"

// Merged folds the records for instance across branches into one bag,
// strongest branch first. With no branches given it folds the current branch
// over the default branch. The second return is false when no listed branch
// holds a record for the instance.
func (r *Registry) Merged(class, instance string, branches ...string) (Bag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, ok := r.classes[class]
	if !ok {
		return nil, false
	}

	if len(branches) == 0 {
		branches = []string{r.branch}
		if r.branch != DefaultBranch {
			branches = append(branches, DefaultBranch)
		}
	}

	var bags []Bag
	for _, branch := range branches {
		if rec, found := node.find(branch, instance); found {
			bags = append(bags, record.CloneBag(rec.values))
		}
	}
	if len(bags) == 0 {
		return nil, false
	}
	return record.MergeAll(bags...), true
}
