package domain

// AnalysisResult holds one backend's view of a command. When the backend
// call failed, Err carries the failure and Text holds an inline marker so
// downstream rendering never sees an empty slot.
type AnalysisResult struct {
	Backend string `json:"backend"`
	Model   string `json:"model"`
	Text    string `json:"text"`
	Err     string `json:"error,omitempty"`
}

// Failed reports whether this backend produced an error instead of text.
func (r AnalysisResult) Failed() bool {
	return r.Err != ""
}

// Analysis is the merged record of all backends' results. Results stay
// namespaced under their backend name; Merged concatenates the successful
// texts under per-backend headings. Nothing is ever overwritten, so two
// backends can never conflict.
type Analysis struct {
	Results map[string]AnalysisResult `json:"results"`
	Merged  string                    `json:"merged"`
}
