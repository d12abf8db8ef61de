package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionQuiz  = "quiz"
	actionReset = "reset"
)

// Quiz sub-actions.
const (
	quizStart    = "start"
	quizToggle   = "toggle"
	quizMove     = "move"
	quizSubmit   = "submit"
	quizSections = "sections"
)

const (
	resetConfirm = "confirm"
	resetCancel  = "cancel"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// param returns the i-th parameter or "" when absent.
func (cd callbackData) param(i int) string {
	if i < 0 || i >= len(cd.Params) {
		return ""
	}
	return cd.Params[i]
}

// intParam parses the i-th parameter as an integer.
func (cd callbackData) intParam(i int) (int, bool) {
	n, err := strconv.Atoi(cd.param(i))
	if err != nil {
		return 0, false
	}
	return n, true
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// buildQuizStartCallback builds callback data for starting a whole-bank quiz.
func buildQuizStartCallback() string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizStart},
	}.encode()
}

// buildSectionQuizCallback builds callback data for starting a quiz on the
// section at index in the user's section list. Names can exceed the callback size limit.
func buildSectionQuizCallback(index int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizStart, strconv.Itoa(index)},
	}.encode()
}

// buildToggleCallback builds callback data for selecting or clearing an option.
func buildToggleCallback(questionID, option int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizToggle, strconv.Itoa(questionID), strconv.Itoa(option)},
	}.encode()
}

// buildMoveCallback builds callback data for showing the question at index.
func buildMoveCallback(index int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizMove, strconv.Itoa(index)},
	}.encode()
}

func buildSectionsCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizSections}}.encode()
}

func buildSubmitCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizSubmit}}.encode()
}

func buildResetConfirmCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetConfirm}}.encode()
}

func buildResetCancelCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetCancel}}.encode()
}
