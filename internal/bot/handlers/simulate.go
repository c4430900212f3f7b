package handlers

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/bot/keyboard"
	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/generation"
	"github.com/sintrade/edubot/internal/i18n"
)

// Plans riskier than this many percent of the account get a warning.
const maxComfortableRiskPercent = 2.0

// NewSimulateHandler opens a trade-planning simulation. The learner commits
// to a direction, a stop loss, a take profit and a risk size, then gets
// feedback on the plan.
func NewSimulateHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}

		var replies []lessonReply
		_, err := env.update(c, func(p *domain.Profile) error {
			t := env.Translator(p)

			if p.Killed {
				replies = append(replies, lessonReply{text: t.T("lesson.killed")})
				return nil
			}

			scenario, err := env.Provider.Simulation(context.Background(), generation.ScenarioRequest{
				Level:    p.Level,
				Focus:    p.Focus,
				Language: p.Language,
			})
			if err != nil {
				replies = append(replies, lessonReply{text: t.T("errors.generic")})
				return nil
			}

			p.Simulation = &domain.SimulationRecord{
				Symbol:     scenario.Symbol,
				Entry:      scenario.Entry,
				Support:    scenario.Support,
				Resistance: scenario.Resistance,
				Context:    scenario.Context,
				Stage:      domain.StageDirection,
			}

			replies = append(replies,
				lessonReply{text: fmt.Sprintf(t.T("sim.intro"), renderScenario(scenario))},
				lessonReply{text: t.T("sim.direction"), markup: env.Keyboard.DirectionButtons()},
			)
			return nil
		})
		if err != nil {
			return err
		}

		for _, reply := range replies {
			if err := sendReply(c, reply); err != nil {
				return err
			}
		}
		return nil
	}
}

// NewDirectionCallback records the long/short choice and asks for a stop loss.
func NewDirectionCallback(env *Env) CallbackHandler {
	return func(c telebot.Context) error {
		cb := c.Callback()
		if cb == nil || c.Sender() == nil {
			return nil
		}

		_, direction, err := keyboard.DecodeCallback(strings.TrimSpace(cb.Data))
		if err != nil {
			return err
		}
		if direction != "long" && direction != "short" {
			return nil
		}

		var reply lessonReply
		_, err = env.update(c, func(p *domain.Profile) error {
			t := env.Translator(p)

			if p.Simulation == nil || p.Simulation.Stage != domain.StageDirection {
				reply = lessonReply{text: t.T("sim.none_active")}
				return nil
			}

			p.Simulation.Direction = direction
			p.Simulation.Stage = domain.StageStopLoss
			reply = lessonReply{
				text: fmt.Sprintf(t.T("sim.stop_loss"), strconv.FormatFloat(p.Simulation.Entry, 'f', 2, 64)),
			}
			return nil
		})
		if err != nil {
			return err
		}

		ackCallback(env, c)
		return sendReply(c, reply)
	}
}

// NewSimulationInput consumes the free-text answers of an active simulation.
func NewSimulationInput(env *Env) Handler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}

		text := strings.TrimSpace(c.Text())

		var reply lessonReply
		_, err := env.update(c, func(p *domain.Profile) error {
			t := env.Translator(p)

			sim := p.Simulation
			if sim == nil {
				reply = lessonReply{text: t.T("sim.none_active")}
				return nil
			}

			if sim.Stage == domain.StageDirection {
				reply = lessonReply{text: t.T("sim.direction"), markup: env.Keyboard.DirectionButtons()}
				return nil
			}

			value, err := parsePrice(text)
			if err != nil {
				reply = lessonReply{text: t.T("sim.invalid_number")}
				return nil
			}

			switch sim.Stage {
			case domain.StageStopLoss:
				if sim.Direction == "long" && value >= sim.Entry {
					reply = lessonReply{text: t.T("sim.stop_above_entry")}
					return nil
				}
				if sim.Direction == "short" && value <= sim.Entry {
					reply = lessonReply{text: t.T("sim.stop_below_entry")}
					return nil
				}
				sim.StopLoss = value
				sim.Stage = domain.StageTakeProfit
				reply = lessonReply{text: t.T("sim.take_profit")}
			case domain.StageTakeProfit:
				if sim.Direction == "long" && value <= sim.Entry {
					reply = lessonReply{text: t.T("sim.target_below_entry")}
					return nil
				}
				if sim.Direction == "short" && value >= sim.Entry {
					reply = lessonReply{text: t.T("sim.target_above_entry")}
					return nil
				}
				sim.TakeProfit = value
				sim.Stage = domain.StageRiskPercent
				reply = lessonReply{text: t.T("sim.risk")}
			case domain.StageRiskPercent:
				if value <= 0 || value > 100 {
					reply = lessonReply{text: t.T("sim.risk_unrealistic")}
					return nil
				}
				reply = lessonReply{text: planFeedback(t, sim, value) + "\n\n" + t.T("sim.done")}
				p.SimulationsDone++
				p.Simulation = nil
			}
			return nil
		})
		if err != nil {
			return err
		}

		return sendReply(c, reply)
	}
}

// planFeedback grades the finished plan on risk/reward and position size.
func planFeedback(t i18n.Translator, sim *domain.SimulationRecord, riskPercent float64) string {
	risk := math.Abs(sim.Entry - sim.StopLoss)
	reward := math.Abs(sim.TakeProfit - sim.Entry)

	ratio := 0.0
	if risk > 0 {
		ratio = reward / risk
	}

	riskStr := strconv.FormatFloat(riskPercent, 'f', -1, 64)
	if ratio >= 2 && riskPercent <= maxComfortableRiskPercent && riskPercent > 0 {
		return fmt.Sprintf(t.T("sim.result_good"), formatRatio(ratio), riskStr)
	}
	return fmt.Sprintf(t.T("sim.result_risky"), formatRatio(ratio), riskStr)
}

func parsePrice(text string) (float64, error) {
	cleaned := strings.ReplaceAll(text, ",", ".")
	cleaned = strings.TrimSuffix(cleaned, "%")
	return strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
}
