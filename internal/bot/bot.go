package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/bot/handlers"
	errors "github.com/sintrade/edubot/internal/errors"
	"github.com/sintrade/edubot/internal/middleware"
	"github.com/sintrade/edubot/pkg/config"
)

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot     *telebot.Bot
	log         *slog.Logger
	cfg         config.Config
	env         *handlers.Env
	rateLimitMw *middleware.RateLimitMiddleware
	router      *Router
	dispatcher  *Dispatcher
	errHandler  *errors.Handler
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	env *handlers.Env,
	rateLimitMw *middleware.RateLimitMiddleware,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
		Poller: &telebot.LongPoller{
			Timeout: cfg.Bot.PollTimeout,
		},
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	dispatcher := NewDispatcher(env.Sessions, log)
	router := NewRouter(dispatcher, log)
	errHandler := errors.NewHandler(log, cfg.Sentry.Enabled)

	b := &Bot{
		telebot:     tb,
		log:         log,
		cfg:         cfg,
		env:         env,
		rateLimitMw: rateLimitMw,
		router:      router,
		dispatcher:  dispatcher,
		errHandler:  errHandler,
	}

	b.setupRouter()
	b.setupDispatcher()

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter() {
	if b.router == nil {
		return
	}

	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler, b.env.I18n))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(KillSwitchMiddleware(b.env.Sessions, b.env.I18n, b.log))
	b.router.Use(middleware.Metrics)

	env := b.env

	helpHandler := handlers.NewHelpHandler(env)
	lessonHandler := handlers.NewLessonHandler(env)
	simulateHandler := handlers.NewSimulateHandler(env)
	challengeHandler := handlers.NewChallengeHandler(env)
	profileHandler := handlers.NewProfileHandler(env)
	askMeHandler := handlers.NewAskMeHandler(env)
	languageHandler := handlers.NewLanguageMenuHandler(env)

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(env))
	b.router.RegisterCommand(CommandHelp, helpHandler)
	b.router.RegisterCommand(CommandMenu, handlers.NewMenuHandler(env))
	b.router.RegisterCommand(CommandButtons, handlers.NewButtonsHandler(env))
	b.router.RegisterCommand(CommandProfile, profileHandler)
	b.router.RegisterCommand(CommandLesson, lessonHandler)
	b.router.RegisterCommand(CommandLessons, handlers.NewLessonsListHandler(env))
	b.router.RegisterCommand(CommandSetLevel, handlers.NewLevelMenuHandler(env))
	b.router.RegisterCommand(CommandSetFocus, handlers.NewFocusMenuHandler(env))
	b.router.RegisterCommand(CommandSetAccess, handlers.NewAccessHandler(env))
	b.router.RegisterCommand(CommandSimulate, simulateHandler)
	b.router.RegisterCommand(CommandDailyChallenge, challengeHandler)
	b.router.RegisterCommand(CommandAskMe, askMeHandler)
	b.router.RegisterCommand(CommandLanguage, languageHandler)
	b.router.RegisterCommand(CommandKill, handlers.NewKillHandler(env))
	b.router.RegisterCommand(CommandStatus, handlers.NewStatusHandler(env))
	b.router.RegisterCommand(CommandReset, handlers.NewResetHandler(env))
	b.router.RegisterCommand(CommandCancel, handlers.NewCancelHandler(env))

	menuRoutes := map[string]handlers.Handler{
		"lesson":    lessonHandler,
		"simulate":  simulateHandler,
		"challenge": challengeHandler,
		"profile":   profileHandler,
		"askme":     askMeHandler,
		"language":  languageHandler,
	}

	b.router.RegisterCallback(CallbackMenu, handlers.NewMenuCallback(env, menuRoutes))
	b.router.RegisterCallback(CallbackLesson, handlers.NewCompleteLessonCallback(env))
	b.router.RegisterCallback(CallbackLessonList, handlers.NewLessonsPageCallback(env))
	b.router.RegisterCallback(CallbackQuiz, handlers.NewStartQuizCallback(env))
	b.router.RegisterCallback(CallbackAnswer, handlers.NewQuizAnswerCallback(env))
	b.router.RegisterCallback(CallbackSet, handlers.NewSetCallback(env))
	b.router.RegisterCallback(CallbackSimDir, handlers.NewDirectionCallback(env))
	b.router.RegisterCallback(CallbackLevel, handlers.NewLevelUpCallback(env))

	buttonRoutes := map[string]handlers.Handler{
		"lesson":    lessonHandler,
		"simulate":  simulateHandler,
		"challenge": challengeHandler,
		"profile":   profileHandler,
		"askme":     askMeHandler,
		"help":      helpHandler,
	}
	b.router.SetDefault(handlers.NewReplyButtonText(env, buttonRoutes, handlers.NewFallbackText(env)))
}

func (b *Bot) setupDispatcher() {
	if b.dispatcher == nil {
		return
	}

	b.dispatcher.RegisterModeHandler(ModeQuiz, handlers.NewQuizTextAnswer(b.env))
	b.dispatcher.RegisterModeHandler(ModeSimulation, handlers.NewSimulationInput(b.env))
	b.dispatcher.RegisterModeHandler(ModeChallenge, handlers.NewChallengeInput(b.env))
	b.dispatcher.RegisterModeHandler(ModeAssistant, handlers.NewAssistantInput(b.env))
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}
