package question

import "time"

// Question is one multiple-choice question in the shared pool.
type Question struct {
	ID            int       `json:"id"`
	QuestionText  string    `json:"question_text"`
	OptionA       string    `json:"option_a"`
	OptionB       string    `json:"option_b"`
	OptionC       string    `json:"option_c"`
	OptionD       string    `json:"option_d"`
	CorrectOption string    `json:"correct_option"`
	Category      string    `json:"category"`
	Difficulty    string    `json:"difficulty"`
	Votes         int       `json:"votes"`
	CreatedBy     int       `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	DefaultCategory   = "General"
	DefaultDifficulty = "Medium"
)

// AddRequest is the body of POST /questions. Category and difficulty are
// optional and fall back to the defaults above.
type AddRequest struct {
	QuestionText  string `json:"question_text" yaml:"question_text" validate:"required"`
	OptionA       string `json:"option_a" yaml:"option_a" validate:"required"`
	OptionB       string `json:"option_b" yaml:"option_b" validate:"required"`
	OptionC       string `json:"option_c" yaml:"option_c" validate:"required"`
	OptionD       string `json:"option_d" yaml:"option_d" validate:"required"`
	CorrectOption string `json:"correct_option" yaml:"correct_option" validate:"required,oneof=A B C D"`
	Category      string `json:"category,omitempty" yaml:"category"`
	Difficulty    string `json:"difficulty,omitempty" yaml:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
}

// AddResult is returned after a question is stored.
type AddResult struct {
	Msg string `json:"msg"`
	ID  int    `json:"id"`
}
