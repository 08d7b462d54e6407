package quest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emberworks/questengine/model"
	"github.com/emberworks/questengine/plugin/hook"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// History action names, one per realized transition kind.
const (
	HistoryStart    = "START"
	HistoryAbandon  = "ABANDON"
	HistoryFail     = "FAIL"
	HistoryComplete = "COMPLETE"
	HistoryExpire   = "EXPIRE"
)

// LastResult values stored on the state row.
const (
	ResultComplete = "COMPLETE"
	ResultFail     = "FAIL"
	ResultAbandon  = "ABANDON"
	ResultExpire   = "EXPIRE"
)

// CooldownConfig holds the default cooldown per repeatability class. A
// quest's timing.cooldown_seconds overrides the class default.
type CooldownConfig struct {
	Daily    time.Duration
	Weekly   time.Duration
	Event    time.Duration
	Infinite time.Duration
}

// DefaultCooldowns returns the stock cooldown durations.
func DefaultCooldowns() CooldownConfig {
	return CooldownConfig{
		Daily:  24 * time.Hour,
		Weekly: 7 * 24 * time.Hour,
		Event:  6 * time.Hour,
	}
}

// TransitionMeta is optional caller-supplied context recorded on the
// history row of a transition.
type TransitionMeta struct {
	Location *Location
	NPCID    string
	RegionID string
	Reason   string
	Extra    map[string]interface{}
}

// EngineParams wires an Engine. Registry, Store and the three context
// factories are required; nil sub-engines and cooldowns get defaults.
type EngineParams struct {
	Registry          *Registry
	Store             Store
	Conditions        *ConditionEngine
	Actions           *ActionExecutor
	Rewards           *RewardEngine
	ConditionContexts ConditionContextFactory
	ActionContexts    ActionContextFactory
	RewardContexts    RewardContextFactory
	Cooldowns         *CooldownConfig
	Hooks             *hook.Center
	Logger            *zap.Logger
	Clock             func() time.Time
}

// TransitionEvent is the payload delivered to hook handlers on quest
// lifecycle events.
type TransitionEvent struct {
	PlayerID string
	QuestID  string
	Action   string
	From     model.RunState
	To       model.RunState
}

// ObjectiveEvent is the payload delivered on after_objective_advance.
type ObjectiveEvent struct {
	PlayerID    string
	QuestID     string
	ObjectiveID string
	Progress    int
	Target      int
	Completed   bool
}

// Engine is the quest state machine. It owns all transition rules, gates
// them through the condition engine and dispatches actions and rewards at
// the right transition points.
//
// The engine performs no internal locking: callers must serialize
// operations per (player, quest), e.g. by routing a player's events
// through one worker.
type Engine struct {
	registry   *Registry
	store      Store
	conditions *ConditionEngine
	actions    *ActionExecutor
	rewards    *RewardEngine

	newConditionCtx ConditionContextFactory
	newActionCtx    ActionContextFactory
	newRewardCtx    RewardContextFactory

	cooldowns CooldownConfig
	hooks     *hook.Center
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine creates an Engine from params, filling in defaults.
func NewEngine(p EngineParams) *Engine {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if p.Conditions == nil {
		p.Conditions = NewConditionEngine(logger)
	}
	if p.Actions == nil {
		p.Actions = NewActionExecutor(logger)
	}
	if p.Rewards == nil {
		p.Rewards = NewRewardEngine(p.Actions, logger)
	}
	cooldowns := DefaultCooldowns()
	if p.Cooldowns != nil {
		cooldowns = *p.Cooldowns
	}
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		registry:        p.Registry,
		store:           p.Store,
		conditions:      p.Conditions,
		actions:         p.Actions,
		rewards:         p.Rewards,
		newConditionCtx: p.ConditionContexts,
		newActionCtx:    p.ActionContexts,
		newRewardCtx:    p.RewardContexts,
		cooldowns:       cooldowns,
		hooks:           p.Hooks,
		logger:          logger,
		now:             clock,
	}
}

// Conditions exposes the condition engine for registering custom types.
func (e *Engine) Conditions() *ConditionEngine { return e.conditions }

// Actions exposes the action executor for registering custom types.
func (e *Engine) Actions() *ActionExecutor { return e.actions }

// CanStart reports whether the player may start the quest right now:
// not ACTIVE, not a completed ONCE quest, not inside a cooldown window,
// and the quest's requirement logic holds.
func (e *Engine) CanStart(ctx context.Context, playerID, questID string) (bool, error) {
	def, ok := e.registry.Get(questID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownQuest, questID)
	}
	st, err := e.store.GetOrCreateState(ctx, playerID, questID)
	if err != nil {
		return false, err
	}
	return e.canStart(st, def), nil
}

func (e *Engine) canStart(st *model.PlayerQuestState, def *QuestDefinition) bool {
	switch {
	case st.State == model.RunActive:
		return false
	case st.State == model.RunCompleted && def.Repeatability == RepeatOnce:
		return false
	case st.State == model.RunCooldown && st.NextAvailableAt != nil && e.now().Before(*st.NextAvailableAt):
		return false
	}
	return e.conditions.Evaluate(def.Requirements, e.newConditionCtx(st.PlayerID, def))
}

// StartQuest moves the quest to ACTIVE, resets all objective progress and
// fires the relevant onStart actions. It returns false without error (and
// without a history row) when the start gate does not hold.
func (e *Engine) StartQuest(ctx context.Context, playerID, questID string, meta *TransitionMeta) (bool, error) {
	def, ok := e.registry.Get(questID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownQuest, questID)
	}
	st, err := e.store.GetOrCreateState(ctx, playerID, questID)
	if err != nil {
		return false, err
	}
	if !e.canStart(st, def) {
		return false, nil
	}
	if e.hooks != nil {
		_, err := e.hooks.Trigger(ctx, hook.BeforeQuestStart, &TransitionEvent{
			PlayerID: playerID,
			QuestID:  questID,
			Action:   HistoryStart,
			From:     st.State,
			To:       model.RunActive,
		})
		if errors.Is(err, hook.ErrInterrupt) {
			return false, nil
		}
	}

	now := e.now()
	from := st.State
	st.State = model.RunActive
	st.StartedAt = &now
	st.CompletedAt = nil
	st.FailedAt = nil
	st.NextAvailableAt = nil
	st.LastResult = ""
	st.ExpiresAt = nil
	if def.Timing.ExpiresAfterSeconds > 0 {
		exp := now.Add(time.Duration(def.Timing.ExpiresAfterSeconds) * time.Second)
		st.ExpiresAt = &exp
	}
	if def.Flow.Mode == FlowSequential {
		idx := 0
		st.CurrentObjectiveIndex = &idx
	} else {
		st.CurrentObjectiveIndex = nil
	}

	if err := e.store.DeleteProgress(ctx, playerID, questID); err != nil {
		return false, err
	}
	for i := range def.Objectives {
		pr := &model.ObjectiveProgress{
			PlayerID:    playerID,
			QuestID:     questID,
			ObjectiveID: def.Objectives[i].ID,
		}
		if err := e.store.SaveProgress(ctx, pr); err != nil {
			return false, err
		}
	}
	if err := e.store.SaveState(ctx, st); err != nil {
		return false, err
	}

	actx := e.newActionCtx(playerID, def)
	if def.Flow.Mode == FlowSequential {
		e.actions.ExecuteAll(def.Objectives[0].OnStart, actx)
	} else {
		for i := range def.Objectives {
			e.actions.ExecuteAll(def.Objectives[i].OnStart, actx)
		}
	}

	e.appendHistory(ctx, def, st, HistoryStart, from, model.RunActive, meta)
	return true, nil
}

// AbandonQuest cancels an ACTIVE run. Repeatable quests land in COOLDOWN,
// one-shot quests in ABANDONED.
func (e *Engine) AbandonQuest(ctx context.Context, playerID, questID string, meta *TransitionMeta) (bool, error) {
	def, ok := e.registry.Get(questID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownQuest, questID)
	}
	st, err := e.store.GetOrCreateState(ctx, playerID, questID)
	if err != nil {
		return false, err
	}
	if st.State != model.RunActive {
		return false, nil
	}
	return e.endRun(ctx, def, st, HistoryAbandon, ResultAbandon, meta)
}

// FailQuest fails an ACTIVE run, recording the reason and bumping the
// failure counter. Repeatable quests land in COOLDOWN.
func (e *Engine) FailQuest(ctx context.Context, playerID, questID, reason string, meta *TransitionMeta) (bool, error) {
	def, ok := e.registry.Get(questID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownQuest, questID)
	}
	st, err := e.store.GetOrCreateState(ctx, playerID, questID)
	if err != nil {
		return false, err
	}
	if st.State != model.RunActive {
		return false, nil
	}
	if meta == nil {
		meta = &TransitionMeta{}
	}
	if meta.Reason == "" {
		meta.Reason = reason
	}
	now := e.now()
	st.FailedAt = &now
	st.TimesFailed++
	return e.endRun(ctx, def, st, HistoryFail, ResultFail, meta)
}

// CompleteQuest completes an ACTIVE run, applies the reward bundle and
// bumps the completion counter. Repeatable quests land in COOLDOWN.
func (e *Engine) CompleteQuest(ctx context.Context, playerID, questID string, meta *TransitionMeta) (bool, error) {
	def, ok := e.registry.Get(questID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownQuest, questID)
	}
	st, err := e.store.GetOrCreateState(ctx, playerID, questID)
	if err != nil {
		return false, err
	}
	if st.State != model.RunActive {
		return false, nil
	}

	now := e.now()
	st.CompletedAt = &now
	st.TimesCompleted++
	changed, err := e.endRun(ctx, def, st, HistoryComplete, ResultComplete, meta)
	if err != nil || !changed {
		return changed, err
	}

	e.rewards.Apply(
		e.newRewardCtx(playerID, def),
		e.newActionCtx(playerID, def),
		def, def.Rewards, st.TimesCompleted)
	return true, nil
}

// endRun finishes an ACTIVE run: picks the terminal state from the result
// kind and repeatability, clears the run pointers, persists and writes the
// history row. The caller has already set result-specific fields.
func (e *Engine) endRun(ctx context.Context, def *QuestDefinition, st *model.PlayerQuestState, action, result string, meta *TransitionMeta) (bool, error) {
	from := st.State
	to := terminalState(action)
	if def.Repeatable() {
		to = model.RunCooldown
		next := e.now().Add(e.cooldownFor(def))
		st.NextAvailableAt = &next
	}
	st.State = to
	st.CurrentObjectiveIndex = nil
	st.ExpiresAt = nil
	st.LastResult = result

	if action == HistoryAbandon || action == HistoryExpire {
		st.StartedAt = nil
		if err := e.store.DeleteProgress(ctx, st.PlayerID, st.QuestID); err != nil {
			return false, err
		}
	}
	if err := e.store.SaveState(ctx, st); err != nil {
		return false, err
	}
	e.appendHistory(ctx, def, st, action, from, to, meta)
	return true, nil
}

func terminalState(action string) model.RunState {
	switch action {
	case HistoryComplete:
		return model.RunCompleted
	case HistoryFail:
		return model.RunFailed
	default:
		return model.RunAbandoned
	}
}

func (e *Engine) cooldownFor(def *QuestDefinition) time.Duration {
	if def.Timing.CooldownSeconds > 0 {
		return time.Duration(def.Timing.CooldownSeconds) * time.Second
	}
	switch def.Repeatability {
	case RepeatDaily:
		return e.cooldowns.Daily
	case RepeatWeekly:
		return e.cooldowns.Weekly
	case RepeatEvent:
		return e.cooldowns.Event
	case RepeatInfinite:
		return e.cooldowns.Infinite
	default:
		return 0
	}
}

// ApplyObjectiveProgress advances one objective of an ACTIVE run by
// increment (or to increment, in ABSOLUTE count mode), clamped at the
// objective target. First-time completion fires the objective's onComplete
// actions exactly once and then applies flow advancement, which may
// auto-complete the quest. Out-of-turn objectives in SEQUENTIAL flow and
// failed requirement gates are no-ops.
func (e *Engine) ApplyObjectiveProgress(ctx context.Context, playerID, questID, objectiveID string, increment int, meta *TransitionMeta) (bool, error) {
	def, ok := e.registry.Get(questID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownQuest, questID)
	}
	obj, objIdx, ok := def.Objective(objectiveID)
	if !ok {
		return false, fmt.Errorf("%w: %s/%s", ErrUnknownObjective, questID, objectiveID)
	}
	st, err := e.store.GetOrCreateState(ctx, playerID, questID)
	if err != nil {
		return false, err
	}
	if st.State != model.RunActive {
		return false, nil
	}
	if def.Flow.Mode == FlowSequential {
		if st.CurrentObjectiveIndex == nil || *st.CurrentObjectiveIndex != objIdx {
			return false, nil
		}
	}
	if !e.conditions.Evaluate(obj.Requirements, e.newConditionCtx(playerID, def)) {
		return false, nil
	}

	pr, err := e.store.GetProgress(ctx, playerID, questID, objectiveID)
	if err != nil {
		return false, err
	}
	if pr == nil {
		pr = &model.ObjectiveProgress{
			PlayerID:    playerID,
			QuestID:     questID,
			ObjectiveID: objectiveID,
		}
	}
	if pr.Completed {
		return false, nil
	}

	next := pr.Progress
	if obj.CountMode == CountAbsolute {
		next = increment
	} else {
		if increment <= 0 {
			return false, nil
		}
		next += increment
	}
	if next > obj.Target {
		next = obj.Target
	}
	if next < 0 {
		next = 0
	}
	if !obj.AllowPartial && next < obj.Target {
		return false, nil
	}
	if next == pr.Progress {
		return false, nil
	}

	pr.Progress = next
	justCompleted := next >= obj.Target
	if justCompleted {
		pr.Completed = true
	}
	if err := e.store.SaveProgress(ctx, pr); err != nil {
		return false, err
	}
	if e.hooks != nil {
		_, _ = e.hooks.Trigger(ctx, hook.AfterObjectiveAdvance, &ObjectiveEvent{
			PlayerID:    playerID,
			QuestID:     questID,
			ObjectiveID: objectiveID,
			Progress:    pr.Progress,
			Target:      obj.Target,
			Completed:   pr.Completed,
		})
	}
	if !justCompleted {
		return true, nil
	}

	// onComplete fires exactly once: we only get here on the transition
	// from not-completed to completed.
	e.actions.ExecuteAll(obj.OnComplete, e.newActionCtx(playerID, def))

	if !obj.AutoComplete {
		return true, nil
	}
	if err := e.advanceFlow(ctx, def, st, objIdx, meta); err != nil {
		return true, err
	}
	return true, nil
}

// advanceFlow applies the flow rules after an objective completes.
func (e *Engine) advanceFlow(ctx context.Context, def *QuestDefinition, st *model.PlayerQuestState, completedIdx int, meta *TransitionMeta) error {
	switch def.Flow.Mode {
	case FlowSequential:
		nextIdx := completedIdx + 1
		if nextIdx < len(def.Objectives) {
			st.CurrentObjectiveIndex = &nextIdx
			if err := e.store.SaveState(ctx, st); err != nil {
				return err
			}
			e.actions.ExecuteAll(def.Objectives[nextIdx].OnStart, e.newActionCtx(st.PlayerID, def))
			return nil
		}
		if def.Flow.AutoCompleteOnLastObjective {
			_, err := e.CompleteQuest(ctx, st.PlayerID, st.QuestID, meta)
			return err
		}
		return nil

	case FlowParallel:
		if !def.Flow.AutoCompleteOnLastObjective {
			return nil
		}
		rows, err := e.store.ProgressByQuest(ctx, st.PlayerID, st.QuestID)
		if err != nil {
			return err
		}
		completed := make(map[string]bool, len(rows))
		for i := range rows {
			completed[rows[i].ObjectiveID] = rows[i].Completed
		}
		for i := range def.Objectives {
			if !completed[def.Objectives[i].ID] {
				return nil
			}
		}
		_, err = e.CompleteQuest(ctx, st.PlayerID, st.QuestID, meta)
		return err
	}
	return nil
}

// appendHistory writes the single audit row of a realized transition.
// History failures are logged, not propagated: the transition itself has
// already been committed.
func (e *Engine) appendHistory(ctx context.Context, def *QuestDefinition, st *model.PlayerQuestState, action string, from, to model.RunState, meta *TransitionMeta) {
	h := &model.QuestHistory{
		PlayerID:  st.PlayerID,
		QuestID:   st.QuestID,
		QuestType: def.Type,
		Action:    action,
		FromState: from,
		ToState:   to,
	}
	extra := map[string]interface{}{}
	if meta != nil {
		if meta.Location != nil {
			h.World = meta.Location.World
			h.X = meta.Location.X
			h.Y = meta.Location.Y
			h.Z = meta.Location.Z
		}
		if meta.NPCID != "" {
			extra["npc_id"] = meta.NPCID
		}
		if meta.RegionID != "" {
			extra["region_id"] = meta.RegionID
		}
		if meta.Reason != "" {
			extra["reason"] = meta.Reason
		}
		for k, v := range meta.Extra {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		raw, err := json.Marshal(extra)
		if err == nil {
			h.Extra = datatypes.JSON(raw)
		}
	}
	if err := e.store.AppendHistory(ctx, h); err != nil {
		e.logger.Error("quest history append failed",
			zap.String("player_id", st.PlayerID),
			zap.String("quest_id", st.QuestID),
			zap.String("action", action),
			zap.Error(err))
	}

	if e.hooks != nil {
		if event := afterEvent(action); event != "" {
			_, _ = e.hooks.Trigger(ctx, event, &TransitionEvent{
				PlayerID: st.PlayerID,
				QuestID:  st.QuestID,
				Action:   action,
				From:     from,
				To:       to,
			})
		}
	}
}

func afterEvent(action string) string {
	switch action {
	case HistoryStart:
		return hook.AfterQuestStart
	case HistoryComplete:
		return hook.AfterQuestComplete
	case HistoryFail:
		return hook.AfterQuestFail
	case HistoryAbandon:
		return hook.AfterQuestAbandon
	case HistoryExpire:
		return hook.AfterQuestExpire
	}
	return ""
}
