package models

// EvaluationItem holds the judged scores (0-100) of one submitted work sample.
type EvaluationItem struct {
	Technical       float64  `json:"technical"`
	Argumentation   float64  `json:"argumentation"`
	Formatting      float64  `json:"formatting"`
	Feedback        string   `json:"feedback"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	Recommendations []string `json:"recommendations"`
}

type EvaluationOutcome struct {
	TechnicalScore     float64  `json:"technicalScore"`
	ArgumentationScore float64  `json:"argumentationScore"`
	FormattingScore    float64  `json:"formattingScore"`
	OverallScore       float64  `json:"overallScore"`
	Feedback           string   `json:"feedback"`
	Strengths          []string `json:"strengths"`
	Improvements       []string `json:"improvements"`
	Recommendations    []string `json:"recommendations"`
	Approved           bool     `json:"approved"`
	ItemCount          int      `json:"itemCount"`
}
