package models

// TranscodeJob describes one source video to be packaged.
type TranscodeJob struct {
	SourceKey       string            `json:"sourceKey"`             // object key of the source video
	Destination     string            `json:"destination,omitempty"` // registered destination name; empty = env default
	DeleteSource    bool              `json:"deleteSource,omitempty"`
	CallbackURL     string            `json:"callbackUrl,omitempty"`
	CallbackHeaders map[string]string `json:"callbackHeaders,omitempty"`
}

// JobResult is the structured outcome of one pipeline invocation. It is the
// only thing the orchestrator reports past its own boundary.
type JobResult struct {
	Status      string `json:"status"` // "success" or "error"
	Message     string `json:"message"`
	ManifestURL string `json:"masterManifestUrl,omitempty"`
	Stage       string `json:"stage,omitempty"` // pipeline stage that failed
	Error       string `json:"error,omitempty"`
	Trace       string `json:"trace,omitempty"`
}
