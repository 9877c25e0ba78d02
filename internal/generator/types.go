package generator

// Parameters are the per-job generation settings passed through to the
// service unmodified. Field names match the backend's /api/generate contract.
type Parameters struct {
	AIModel           string `json:"aiModel"`
	Voice             string `json:"voice"`
	ParagraphNumber   int    `json:"paragraphNumber"`
	AutomateUpload    bool   `json:"automateYoutubeUpload"`
	UseMusic          bool   `json:"useMusic"`
	ZipURL            string `json:"zipUrl"`
	Threads           int    `json:"threads"`
	SubtitlesPosition string `json:"subtitlesPosition"`
	CustomPrompt      string `json:"customPrompt"`
	SubtitlesColor    string `json:"color"`
}

// generateRequest is the wire payload: Parameters plus the topic.
type generateRequest struct {
	VideoSubject string `json:"videoSubject"`
	Parameters
}

// generateResponse is the backend's reply. Status "success" means a video
// was produced and Data holds its reference. UploadError, when non-empty,
// reports that the (requested) upload step failed even though generation
// succeeded.
type generateResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Data        string `json:"data"`
	UploadError string `json:"uploadError,omitempty"`
}

// Result is what the caller gets back on success.
type Result struct {
	ArtifactRef string
	Message     string
	UploadError string
}
