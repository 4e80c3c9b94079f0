package watcher

// ReloadDecision describes how to react to a batch of document changes
type ReloadDecision struct {
	Reload       bool // Parse the document again
	Removed      bool // The document is gone; keep serving the last graph
	ChangedFiles []string
}

// AnalyzeChanges determines whether a change event requires a reload
func AnalyzeChanges(event ChangeEvent) *ReloadDecision {
	decision := &ReloadDecision{
		ChangedFiles: event.Paths,
	}

	switch event.Type {
	case ChangeTypeWritten:
		// New content, possibly a partial write; a failed parse keeps the
		// previous graph
		decision.Reload = true

	case ChangeTypeRemoved:
		// Editors that save by rename remove the document briefly; a
		// following write triggers the reload
		decision.Removed = true
	}

	return decision
}
