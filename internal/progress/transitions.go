package progress

// validTransitions contains the permitted forward transitions in the learning flow.
var validTransitions = map[State][]State{
	StateLesson: {
		StateLessonComplete,
	},
	StateLessonComplete: {
		StateQuiz,
	},
	StateQuiz: {
		StateLesson,
		StateLevelComplete,
	},
	StateLevelComplete: {
		StateLesson,
	},
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
func IsTransitionAllowed(from, to State) bool {
	if to == StateKilled {
		return true
	}
	if from == StateKilled {
		return to == StateLesson
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe flow transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}
