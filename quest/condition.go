package quest

import (
	"fmt"
	"sync"

	"github.com/emberworks/questengine/model"
	"go.uber.org/zap"
)

// ConditionEvaluator evaluates a single condition leaf. A returned error
// means the leaf is malformed (missing or mistyped parameters); the engine
// logs it and treats the leaf as false. Evaluators never panic.
type ConditionEvaluator func(p Params, ctx ConditionContext) (bool, error)

// ConditionEngine evaluates ConditionLogic trees. Evaluators are looked up
// in a registry keyed by ConditionType, so new condition types can be added
// without touching the engine.
type ConditionEngine struct {
	mu         sync.RWMutex
	evaluators map[ConditionType]ConditionEvaluator
	logger     *zap.Logger
}

// NewConditionEngine creates a ConditionEngine with all builtin condition
// types registered.
func NewConditionEngine(logger *zap.Logger) *ConditionEngine {
	e := &ConditionEngine{
		evaluators: make(map[ConditionType]ConditionEvaluator),
		logger:     logger,
	}
	e.registerBuiltins()
	return e
}

// Register adds or replaces the evaluator for a condition type.
func (e *ConditionEngine) Register(t ConditionType, fn ConditionEvaluator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.evaluators[t] = fn
}

// Evaluate runs the three-list boolean logic:
// every allOf entry must hold, at least one anyOf entry must hold when the
// list is non-empty, and no noneOf entry may hold. All paths short-circuit.
func (e *ConditionEngine) Evaluate(logic ConditionLogic, ctx ConditionContext) bool {
	for _, c := range logic.AllOf {
		if !e.evalOne(c, ctx) {
			return false
		}
	}
	if len(logic.AnyOf) > 0 {
		any := false
		for _, c := range logic.AnyOf {
			if e.evalOne(c, ctx) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	for _, c := range logic.NoneOf {
		if e.evalOne(c, ctx) {
			return false
		}
	}
	return true
}

// evalOne is fail-closed: unknown types and malformed parameters evaluate
// to false with a warning, never an error across this boundary.
func (e *ConditionEngine) evalOne(c ConditionDef, ctx ConditionContext) bool {
	e.mu.RLock()
	fn, ok := e.evaluators[c.Type]
	e.mu.RUnlock()
	if !ok {
		e.logger.Warn("unknown condition type",
			zap.String("type", string(c.Type)),
			zap.String("player_id", ctx.PlayerID()))
		return false
	}
	result, err := fn(c.Params, ctx)
	if err != nil {
		e.logger.Warn("condition evaluation failed",
			zap.String("type", string(c.Type)),
			zap.String("player_id", ctx.PlayerID()),
			zap.Error(err))
		return false
	}
	return result
}

func (e *ConditionEngine) registerBuiltins() {
	e.evaluators[ConditionFlag] = evalFlag
	e.evaluators[ConditionQuestState] = evalQuestState
	e.evaluators[ConditionJobLevel] = evalJobLevel
	e.evaluators[ConditionJobActive] = evalJobActive
	e.evaluators[ConditionHousingLevel] = evalHousingLevel
	e.evaluators[ConditionRank] = evalRank
	e.evaluators[ConditionRegionVisited] = evalRegionVisited
	e.evaluators[ConditionRegionInside] = evalRegionInside
	e.evaluators[ConditionWorldState] = evalWorldState
	e.evaluators[ConditionEventActive] = evalEventActive
	e.evaluators[ConditionTimeRange] = evalTimeRange
}

func evalFlag(p Params, ctx ConditionContext) (bool, error) {
	key, ok := p.Str("key")
	if !ok {
		return false, fmt.Errorf("missing param %q", "key")
	}
	return ctx.FlagEquals(key, p.BoolOr("equals", true)), nil
}

func evalQuestState(p Params, ctx ConditionContext) (bool, error) {
	questID, ok := p.Str("quest_id")
	if !ok {
		return false, fmt.Errorf("missing param %q", "quest_id")
	}
	want, ok := p.Str("state")
	if !ok {
		return false, fmt.Errorf("missing param %q", "state")
	}
	state, known := ctx.QuestState(questID)
	if !known {
		// Never-touched quests count as LOCKED.
		state = model.RunLocked
	}
	return state == model.RunState(want), nil
}

func evalJobLevel(p Params, ctx ConditionContext) (bool, error) {
	jobID, ok := p.Str("job_id")
	if !ok {
		return false, fmt.Errorf("missing param %q", "job_id")
	}
	min, ok := p.Int("min")
	if !ok {
		return false, fmt.Errorf("missing param %q", "min")
	}
	return ctx.JobLevel(jobID) >= min, nil
}

func evalJobActive(p Params, ctx ConditionContext) (bool, error) {
	jobID, ok := p.Str("job_id")
	if !ok {
		return false, fmt.Errorf("missing param %q", "job_id")
	}
	return ctx.IsJobActive(jobID), nil
}

func evalHousingLevel(p Params, ctx ConditionContext) (bool, error) {
	min, ok := p.Int("min")
	if !ok {
		return false, fmt.Errorf("missing param %q", "min")
	}
	return ctx.HousingLevel() >= min, nil
}

func evalRank(p Params, ctx ConditionContext) (bool, error) {
	min, ok := p.Int("min")
	if !ok {
		return false, fmt.Errorf("missing param %q", "min")
	}
	return ctx.RankValue() >= min, nil
}

func evalRegionVisited(p Params, ctx ConditionContext) (bool, error) {
	region, ok := p.Str("region_id")
	if !ok {
		return false, fmt.Errorf("missing param %q", "region_id")
	}
	return ctx.HasVisitedRegion(region), nil
}

func evalRegionInside(p Params, ctx ConditionContext) (bool, error) {
	region, ok := p.Str("region_id")
	if !ok {
		return false, fmt.Errorf("missing param %q", "region_id")
	}
	return ctx.IsInsideRegion(region), nil
}

// evalWorldState compares an integer world-state value. "equals" wins over
// "min"/"max"; at least one bound must be present.
func evalWorldState(p Params, ctx ConditionContext) (bool, error) {
	key, ok := p.Str("key")
	if !ok {
		return false, fmt.Errorf("missing param %q", "key")
	}
	value := ctx.WorldStateInt(key, p.IntOr("default", 0))
	if eq, ok := p.Int("equals"); ok {
		return value == eq, nil
	}
	min, hasMin := p.Int("min")
	max, hasMax := p.Int("max")
	if !hasMin && !hasMax {
		return false, fmt.Errorf("world state condition needs equals, min or max")
	}
	if hasMin && value < min {
		return false, nil
	}
	if hasMax && value > max {
		return false, nil
	}
	return true, nil
}

func evalEventActive(p Params, ctx ConditionContext) (bool, error) {
	eventID, ok := p.Str("event_id")
	if !ok {
		return false, fmt.Errorf("missing param %q", "event_id")
	}
	return ctx.IsEventActive(eventID), nil
}

// evalTimeRange implements the hour-window semantics: equal bounds mean the
// whole day, start < end is a same-day [start, end) window, and start > end
// wraps past midnight as two windows ORed together.
func evalTimeRange(p Params, ctx ConditionContext) (bool, error) {
	start, ok := p.Int("start")
	if !ok {
		return false, fmt.Errorf("missing param %q", "start")
	}
	end, ok := p.Int("end")
	if !ok {
		return false, fmt.Errorf("missing param %q", "end")
	}
	switch {
	case start == end:
		return true, nil
	case start < end:
		return ctx.IsTimeInRange(start, end), nil
	default:
		return ctx.IsTimeInRange(start, 24) || ctx.IsTimeInRange(0, end), nil
	}
}

// HourInRange reports whether hour falls in the [start, end) window, with
// the same wraparound semantics as the TIME_RANGE condition. Context
// implementations can delegate IsTimeInRange to this.
func HourInRange(hour, start, end int) bool {
	if start == end {
		return true
	}
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}
