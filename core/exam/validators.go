package exam

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

var (
	choicesTag  = "choices"
	choicesText = "choice questions need at least 2 choices"

	answerTag  = "answer"
	answerText = "answers must be among the choices"

	singleAnswerTag  = "singleanswer"
	singleAnswerText = "this question takes exactly one answer"
)

func init() {
	core.Validate.RegisterStructValidation(questionStructValidation, NewQuestion{})
	core.RegisterCustomTranslation(choicesTag, choicesText)
	core.RegisterCustomTranslation(answerTag, answerText)
	core.RegisterCustomTranslation(singleAnswerTag, singleAnswerText)
}

// questionStructValidation checks the answers of a NewQuestion against its type.
func questionStructValidation(sl validator.StructLevel) {
	nq, ok := sl.Current().Interface().(NewQuestion)
	if !ok || nq.Type == TypeShort {
		return
	}
	if len(nq.Choices) < 2 {
		sl.ReportError(nq.Choices, "choices", "Choices", choicesTag, "")
		return
	}
	if nq.Type != TypeMultiple && len(nq.Answers) > 1 {
		sl.ReportError(nq.Answers, "answers", "Answers", singleAnswerTag, "")
		return
	}
	for _, a := range nq.Answers {
		if !core.ContainsString(nq.Choices, a) {
			sl.ReportError(nq.Answers, "answers", "Answers", answerTag, "")
			return
		}
	}
}
