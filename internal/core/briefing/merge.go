package briefing

// AddTopics folds newly-arrived topics into the live registry. Safe to call
// at any point in the session, including while a cursor is active.
//
// Merging is strictly additive: no previously assigned (topicIndex,
// itemIndex) pair is ever reused or shifted, so cursors and history entries
// computed before the merge remain valid after it.
//
//   - A topic whose label already exists gains the new items at the end of
//     its item list, registered at the next available itemIndex.
//   - An unknown label is appended as a brand-new topic at the end.
//   - Item ids already registered anywhere are dropped with a warning.
//
// Returns the number of items actually registered.
func (r *Registry) AddTopics(newTopics []Topic) int {
	added := 0

	for _, incoming := range newTopics {
		topicIndex := r.findTopic(incoming.Label)
		if topicIndex < 0 {
			topicIndex = len(r.topics)
			r.topics = append(r.topics, Topic{Label: incoming.Label})
		}

		topic := &r.topics[topicIndex]
		for _, ref := range incoming.Items {
			itemIndex := len(topic.Items)
			if !r.register(ref, topicIndex, itemIndex) {
				continue
			}
			topic.Items = append(topic.Items, ref)
			added++
		}
	}

	if added > 0 {
		r.log.Debug().Int("items", added).Int("topics", len(newTopics)).Msg("merged topics into registry")
	}

	return added
}

// findTopic returns the index of the topic with the given label, or -1.
func (r *Registry) findTopic(label string) int {
	for i := range r.topics {
		if r.topics[i].Label == label {
			return i
		}
	}
	return -1
}
