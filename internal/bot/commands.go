package bot

// Command constants for Telegram bot commands.
const (
	CommandStart          = "/start"
	CommandHelp           = "/help"
	CommandMenu           = "/menu"
	CommandButtons        = "/buttons"
	CommandProfile        = "/profile"
	CommandLesson         = "/lesson"
	CommandLessons        = "/lessons"
	CommandSetLevel       = "/setlevel"
	CommandSetFocus       = "/setfocus"
	CommandSetAccess      = "/setaccess"
	CommandSimulate       = "/simulate"
	CommandDailyChallenge = "/dailychallenge"
	CommandAskMe          = "/askme"
	CommandLanguage       = "/language"
	CommandKill           = "/kill"
	CommandStatus         = "/status"
	CommandReset          = "/reset"
	CommandCancel         = "/cancel"
)

// Callback unique prefixes for inline button interactions. Each prefix
// is the part of the callback data before the first separator.
const (
	CallbackMenu       = "menu"
	CallbackLesson     = "lesson"
	CallbackLessonList = "lessons"
	CallbackQuiz       = "quiz"
	CallbackAnswer     = "ans"
	CallbackSet        = "set"
	CallbackSimDir     = "simdir"
	CallbackLevel      = "level"
)
