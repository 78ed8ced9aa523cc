package domain

// Session is one uploaded clip plus the feedback generated for it.
type Session struct {
	ID                string    `json:"id"`
	User              string    `json:"user"`
	VideoOriginalName string    `json:"video_original_name"`
	VideoSavedPath    string    `json:"video_saved_path"`
	VideoURL          string    `json:"video_url"`
	// LegacyVideoURL is read from older documents and folded into VideoURL.
	LegacyVideoURL    string    `json:"video_github_raw_url,omitempty"`
	Role              string    `json:"role"`
	Skill             string    `json:"skill"`
	Rating            int       `json:"rating"`
	CustomPrompt      string    `json:"custom_prompt"`
	PromptText        string    `json:"prompt_text"`
	Feedback          string    `json:"feedback"`
	Highlights        []string  `json:"highlights"`
	CreatedAt         Timestamp `json:"created_at"`
}

const (
	MinRating = 1
	MaxRating = 10
)
