package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/SlpAus/quiz-share-backend/internal/question"
)

// importFile is the layout of a quizctl import file:
//
//	questions:
//	  - question_text: What is Go?
//	    option_a: A language
//	    ...
//	    correct_option: A
type importFile struct {
	Questions []question.AddRequest `yaml:"questions"`
}

func loadQuestions(r io.Reader) ([]question.AddRequest, error) {
	var f importFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}
	if len(f.Questions) == 0 {
		return nil, fmt.Errorf("import file has no questions")
	}
	return f.Questions, nil
}
