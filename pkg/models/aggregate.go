package models

// AggregateState is the full account state: one writer at a time, loaded
// once and persisted as a unit after every mutation.
type AggregateState struct {
	Profile    UserProfile   `json:"user"`
	Library    []LibraryItem `json:"library"`
	Tasks      []Task        `json:"tasks"`
	Collection Collection    `json:"collection"`
}

// PendingTasks returns the tasks still awaiting completion.
func (s *AggregateState) PendingTasks() []Task {
	var pending []Task
	for _, t := range s.Tasks {
		if t.Pending() {
			pending = append(pending, t)
		}
	}
	return pending
}

// FindTask returns a pointer into Tasks for the given id, or nil.
func (s *AggregateState) FindTask(id string) *Task {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return &s.Tasks[i]
		}
	}
	return nil
}

// FindLibraryItem returns a pointer into Library for the given id, or nil.
func (s *AggregateState) FindLibraryItem(id string) *LibraryItem {
	for i := range s.Library {
		if s.Library[i].ID == id {
			return &s.Library[i]
		}
	}
	return nil
}

// PendingLibraryIDs collects the library ids referenced by pending tasks.
// Used to keep an item from being promoted twice in flight.
func (s *AggregateState) PendingLibraryIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, t := range s.Tasks {
		if t.Pending() && t.LibraryID != "" {
			ids[t.LibraryID] = true
		}
	}
	return ids
}
