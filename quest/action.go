package quest

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ActionHandler executes a single action leaf. A returned error means the
// leaf is malformed and was skipped; handlers never panic and never roll
// back previously executed actions.
type ActionHandler func(p Params, ctx ActionContext) error

// ActionExecutor runs action lists strictly in order. Handlers are looked
// up in a registry keyed by ActionType, so new action types can be added
// without touching the executor. Execution is fire-and-forget: unknown
// types and malformed leaves are skipped with a warning.
type ActionExecutor struct {
	mu       sync.RWMutex
	handlers map[ActionType]ActionHandler
	logger   *zap.Logger
}

// NewActionExecutor creates an ActionExecutor with all builtin action
// types registered.
func NewActionExecutor(logger *zap.Logger) *ActionExecutor {
	x := &ActionExecutor{
		handlers: make(map[ActionType]ActionHandler),
		logger:   logger,
	}
	x.registerBuiltins()
	return x
}

// Register adds or replaces the handler for an action type.
func (x *ActionExecutor) Register(t ActionType, h ActionHandler) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.handlers[t] = h
}

// ExecuteAll executes actions in list order. Each action is independent;
// a skipped or failed action does not stop the rest of the list.
func (x *ActionExecutor) ExecuteAll(actions []ActionDef, ctx ActionContext) {
	for _, a := range actions {
		x.mu.RLock()
		h, ok := x.handlers[a.Type]
		x.mu.RUnlock()
		if !ok {
			x.logger.Warn("unknown action type",
				zap.String("type", string(a.Type)),
				zap.String("player_id", ctx.PlayerID()))
			continue
		}
		if err := h(a.Params, ctx); err != nil {
			x.logger.Warn("action skipped",
				zap.String("type", string(a.Type)),
				zap.String("player_id", ctx.PlayerID()),
				zap.Error(err))
		}
	}
}

func (x *ActionExecutor) registerBuiltins() {
	x.handlers[ActionSetFlag] = execSetFlag
	x.handlers[ActionClearFlag] = execClearFlag
	x.handlers[ActionStartDialogue] = execStartDialogue
	x.handlers[ActionTeleport] = execTeleport
	x.handlers[ActionMessage] = execMessage
	x.handlers[ActionTitle] = execTitle
	x.handlers[ActionSound] = execSound
	x.handlers[ActionConsoleCommand] = execConsoleCommand
	x.handlers[ActionGiveItem] = execGiveItem
	x.handlers[ActionSetWorldState] = execSetWorldState
	x.handlers[ActionBroadcast] = execBroadcast
}

func execSetFlag(p Params, ctx ActionContext) error {
	key, ok := p.Str("key")
	if !ok {
		return fmt.Errorf("missing param %q", "key")
	}
	ctx.SetFlag(ctx.PlayerID(), key, p.BoolOr("value", true))
	return nil
}

func execClearFlag(p Params, ctx ActionContext) error {
	key, ok := p.Str("key")
	if !ok {
		return fmt.Errorf("missing param %q", "key")
	}
	ctx.SetFlag(ctx.PlayerID(), key, false)
	return nil
}

func execStartDialogue(p Params, ctx ActionContext) error {
	player := ctx.Player()
	if player == nil {
		return nil // offline, skip silently
	}
	npcID, ok := p.Str("npc_id")
	if !ok {
		return fmt.Errorf("missing param %q", "npc_id")
	}
	dialogueID, ok := p.Str("dialogue_id")
	if !ok {
		return fmt.Errorf("missing param %q", "dialogue_id")
	}
	ctx.StartDialogue(player, npcID, dialogueID)
	return nil
}

func execTeleport(p Params, ctx ActionContext) error {
	player := ctx.Player()
	if player == nil {
		return nil
	}
	world, ok := p.Str("world")
	if !ok {
		return fmt.Errorf("missing param %q", "world")
	}
	x, okX := p.Float("x")
	y, okY := p.Float("y")
	z, okZ := p.Float("z")
	if !okX || !okY || !okZ {
		return fmt.Errorf("missing teleport coordinates")
	}
	ctx.Teleport(player, Location{
		World: world,
		X:     x,
		Y:     y,
		Z:     z,
		Yaw:   float32(p.FloatOr("yaw", 0)),
		Pitch: float32(p.FloatOr("pitch", 0)),
	})
	return nil
}

func execMessage(p Params, ctx ActionContext) error {
	player := ctx.Player()
	if player == nil {
		return nil
	}
	text, ok := p.Str("text")
	if !ok {
		return fmt.Errorf("missing param %q", "text")
	}
	ctx.SendMessage(player, TranslateColors(text))
	return nil
}

func execTitle(p Params, ctx ActionContext) error {
	player := ctx.Player()
	if player == nil {
		return nil
	}
	title, ok := p.Str("title")
	if !ok {
		return fmt.Errorf("missing param %q", "title")
	}
	ctx.SendTitle(player,
		TranslateColors(title),
		TranslateColors(p.StrOr("subtitle", "")),
		time.Duration(p.IntOr("fade_in_ms", 500))*time.Millisecond,
		time.Duration(p.IntOr("stay_ms", 3000))*time.Millisecond,
		time.Duration(p.IntOr("fade_out_ms", 500))*time.Millisecond)
	return nil
}

func execSound(p Params, ctx ActionContext) error {
	player := ctx.Player()
	if player == nil {
		return nil
	}
	sound, ok := p.Str("sound")
	if !ok {
		return fmt.Errorf("missing param %q", "sound")
	}
	ctx.PlaySound(player, sound, p.FloatOr("volume", 1), p.FloatOr("pitch", 1))
	return nil
}

func execConsoleCommand(p Params, ctx ActionContext) error {
	cmd, ok := p.Str("command")
	if !ok {
		return fmt.Errorf("missing param %q", "command")
	}
	ctx.RunConsoleCommand(cmd)
	return nil
}

func execGiveItem(p Params, ctx ActionContext) error {
	player := ctx.Player()
	if player == nil {
		return nil
	}
	itemID, ok := p.Str("item_id")
	if !ok {
		return fmt.Errorf("missing param %q", "item_id")
	}
	ctx.GiveItem(player, itemID, p.IntOr("amount", 1), p.BoolOr("bind_on_pickup", false))
	return nil
}

// execSetWorldState sets a world-state integer either absolutely ("value")
// or relatively ("increment_by").
func execSetWorldState(p Params, ctx ActionContext) error {
	key, ok := p.Str("key")
	if !ok {
		return fmt.Errorf("missing param %q", "key")
	}
	if v, ok := p.Int("value"); ok {
		ctx.SetWorldState(key, &v, nil)
		return nil
	}
	if inc, ok := p.Int("increment_by"); ok {
		ctx.SetWorldState(key, nil, &inc)
		return nil
	}
	return fmt.Errorf("world state action needs value or increment_by")
}

func execBroadcast(p Params, ctx ActionContext) error {
	text, ok := p.Str("text")
	if !ok {
		return fmt.Errorf("missing param %q", "text")
	}
	ctx.Broadcast(TranslateColors(text))
	return nil
}
