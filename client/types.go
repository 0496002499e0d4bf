package client

import "time"

type User struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Question struct {
	ID           uint     `json:"id"`
	Text         string   `json:"text"`
	QuestionType string   `json:"question_type"`
	IsRequired   bool     `json:"is_required"`
	Order        int      `json:"order"`
	Options      []string `json:"options"`
}

type Form struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	FormType      string     `json:"form_type"`
	CreatedBy     uint       `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	IsActive      bool       `json:"is_active"`
	ExpiresAt     *time.Time `json:"expires_at"`
	Questions     []Question `json:"questions"`
	ResponseCount int64      `json:"response_count"`
	ShareableLink string     `json:"shareable_link"`
	IsExpired     bool       `json:"is_expired"`
}

type QuestionInput struct {
	Text         string   `json:"text"`
	QuestionType string   `json:"question_type"`
	IsRequired   *bool    `json:"is_required,omitempty"`
	Options      []string `json:"options,omitempty"`
}

type FormInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	FormType    string          `json:"form_type,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Questions   []QuestionInput `json:"questions"`
}

type FormFilter struct {
	FormType string
	IsActive *bool
	Search   string
}

type ShareLink struct {
	ShareableLink string `json:"shareable_link"`
	FormID        string `json:"form_id"`
	FormTitle     string `json:"form_title"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type QuestionStats struct {
	QuestionID         uint           `json:"question_id"`
	QuestionText       string         `json:"question_text"`
	QuestionType       string         `json:"question_type"`
	ResponseCount      int            `json:"response_count"`
	ResponseRate       float64        `json:"response_rate"`
	AverageRating      *float64       `json:"average_rating"`
	AnswerDistribution map[string]int `json:"answer_distribution"`
	TopAnswers         []string       `json:"top_answers"`
}

type Analytics struct {
	FormID            string          `json:"form_id"`
	FormTitle         string          `json:"form_title"`
	TotalResponses    int             `json:"total_responses"`
	RecentResponses   int             `json:"recent_responses"`
	DailyResponses    []DailyCount    `json:"daily_responses"`
	CompletionRate    float64         `json:"completion_rate"`
	AverageRating     *float64        `json:"average_rating"`
	QuestionAnalytics []QuestionStats `json:"question_analytics"`
	LastUpdated       time.Time       `json:"last_updated"`
}

type Answer struct {
	ID           uint     `json:"id"`
	Question     uint     `json:"question"`
	QuestionText string   `json:"question_text"`
	QuestionType string   `json:"question_type"`
	AnswerText   string   `json:"answer_text"`
	AnswerValue  []string `json:"answer_value"`
}

type Response struct {
	ID          string    `json:"id"`
	Form        string    `json:"form"`
	FormTitle   string    `json:"form_title"`
	FormType    string    `json:"form_type"`
	SubmittedAt time.Time `json:"submitted_at"`
	Answers     []Answer  `json:"answers"`
}

type ResponsePage struct {
	Count   int64      `json:"count"`
	Page    int        `json:"page"`
	Limit   int        `json:"limit"`
	Results []Response `json:"results"`
}

type ResponseQuery struct {
	FormType string
	FormID   string
	DateFrom string
	DateTo   string
	Page     int
	Limit    int
}

type PublicForm struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FormType    string     `json:"form_type"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Questions   []Question `json:"questions"`
}

type AnswerInput struct {
	Question    uint     `json:"question"`
	AnswerText  string   `json:"answer_text,omitempty"`
	AnswerValue []string `json:"answer_value,omitempty"`
}

type SubmissionResult struct {
	Message    string `json:"message"`
	ResponseID string `json:"response_id"`
}
