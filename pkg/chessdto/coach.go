package chessdto

type HintRequest struct {
	Level string `json:"level"`
	Image bool   `json:"image"`
}

type HintResponse struct {
	Move        string `json:"move"`
	SAN         string `json:"san"`
	From        string `json:"from"`
	To          string `json:"to"`
	Category    string `json:"category"`
	Level       string `json:"level"`
	Explanation string `json:"explanation"`
	Degraded    bool   `json:"degraded"`
	Path        string `json:"path"`
	Opening     string `json:"opening,omitempty"`
	ImagePNG    string `json:"image_png,omitempty"` // base64
}

type SkillLevelRequest struct {
	// SkillLevel accepts a number or a label such as "Club Player".
	SkillLevel any `json:"skill_level"`
}

type SkillLevelResponse struct {
	SkillLevel  int    `json:"skill_level"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type LearningModeRequest struct {
	Enabled   bool   `json:"enabled"`
	HintLevel string `json:"hint_level"`
}

type LearningModeResponse struct {
	Enabled   bool   `json:"enabled"`
	HintLevel string `json:"hint_level"`
}
