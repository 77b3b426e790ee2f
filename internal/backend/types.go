package backend

// Operation names, used in errors and logs.
const (
	OpHealth       = "health"
	OpSaveJob      = "save_jd"
	OpSaveResume   = "save_resume"
	OpUploadResume = "upload_resume"
	OpStartQuiz    = "start_quiz"
	OpGradeQuiz    = "grade_quiz"
	OpMatch        = "match"
)

type JobRequest struct {
	Title       string `json:"title"`
	Description string `json:"jd_text"`
}

type JobResponse struct {
	JobID int64 `json:"job_id"`
}

type ResumeTextRequest struct {
	Text string `json:"text"`
}

// ResumeResponse is returned by both resume endpoints. Chars is only set for uploads.
type ResumeResponse struct {
	ResumeID int64 `json:"resume_id"`
	Chars    int   `json:"chars,omitempty"`
}

type QuizStartRequest struct {
	JobID     int64 `json:"job_id"`
	Questions int   `json:"n"`
}

type Question struct {
	ID    int64  `json:"id"`
	Index int    `json:"idx"`
	Text  string `json:"text"`
}

type Quiz struct {
	ID        int64      `json:"quiz_id"`
	Questions []Question `json:"questions"`
}

type Answer struct {
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
}

type GradeRequest struct {
	QuizID  int64    `json:"quiz_id"`
	Answers []Answer `json:"answers"`
}

type QuestionGrade struct {
	QuestionID int64   `json:"question_id"`
	Score      float64 `json:"score"`
	Tip        string  `json:"tip"`
}

type Grading struct {
	Overall     float64         `json:"overall"`
	PerQuestion []QuestionGrade `json:"feedback"`
	QuizMatch   *QuizMatch      `json:"quiz_match,omitempty"`
}

type CVMatch struct {
	Score       float64  `json:"score"`
	Gaps        []string `json:"gaps"`
	Matched     int      `json:"matched"`
	TotalSkills int      `json:"total_skills"`
}

type QuizMatch struct {
	Score       float64  `json:"score"`
	Gaps        []string `json:"gaps,omitempty"`
	Matched     int      `json:"matched,omitempty"`
	TotalSkills int      `json:"total_skills,omitempty"`
	Message     string   `json:"message,omitempty"`
}

type Recommendation struct {
	TopGaps []string `json:"top_cv_gaps,omitempty"`
}

// MatchRequest omits ResumeID and QuizID when nil.
type MatchRequest struct {
	JobID    int64  `json:"job_id"`
	ResumeID *int64 `json:"resume_id,omitempty"`
	QuizID   *int64 `json:"quiz_id,omitempty"`
}

// MatchResult fields are all optional; absence is meaningful to the reconciler.
type MatchResult struct {
	CVMatch   *CVMatch        `json:"cv_match,omitempty"`
	QuizMatch *QuizMatch      `json:"quiz_match,omitempty"`
	Combined  *float64        `json:"combined,omitempty"`
	Badge     string          `json:"badge,omitempty"`
	Message   string          `json:"message,omitempty"`
	Recommend *Recommendation `json:"recommend,omitempty"`
}
