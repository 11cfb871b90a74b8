package bank

// Record is the nested balance map: role -> member id -> token type -> count.
// Missing entries are implicitly zero; counts never go negative.
type Record map[string]map[string]map[string]int

func (r Record) Get(role, memberID, tokenType string) int {
	return r[role][memberID][tokenType]
}

func (r Record) Set(role, memberID, tokenType string, count int) {
	if count < 0 {
		count = 0
	}
	members, ok := r[role]
	if !ok {
		members = make(map[string]map[string]int)
		r[role] = members
	}
	tokens, ok := members[memberID]
	if !ok {
		tokens = make(map[string]int)
		members[memberID] = tokens
	}
	tokens[tokenType] = count
}

// Add increments a balance and returns the counts before and after.
func (r Record) Add(role, memberID, tokenType string, count int) (start, end int) {
	start = r.Get(role, memberID, tokenType)
	end = start + count
	r.Set(role, memberID, tokenType, end)
	return start, end
}

// Merge overlays partial onto r, overwriting only the leaf counts present in
// partial. Entries of r not named by partial are preserved.
func (r Record) Merge(partial Record) {
	for role, members := range partial {
		for memberID, tokens := range members {
			for tokenType, count := range tokens {
				r.Set(role, memberID, tokenType, count)
			}
		}
	}
}

// RemoveMember deletes the member from every role scope. Reports whether any
// entry was removed.
func (r Record) RemoveMember(memberID string) bool {
	removed := false
	for _, members := range r {
		if _, ok := members[memberID]; ok {
			delete(members, memberID)
			removed = true
		}
	}
	return removed
}
