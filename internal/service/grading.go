package service

// matchesAnswerKey reports whether a selection equals the correct
// option set exactly. Partial matches earn nothing, extra selections
// void the answer, and an empty selection never matches a non-empty
// key.
func matchesAnswerKey(selected, correct []string) bool {
	if len(selected) != len(correct) {
		return false
	}

	key := make(map[string]struct{}, len(correct))
	for _, id := range correct {
		key[id] = struct{}{}
	}
	for _, id := range selected {
		if _, ok := key[id]; !ok {
			return false
		}
		// A duplicate selection of the same option must not pass the
		// length check above.
		delete(key, id)
	}
	return len(key) == 0
}
