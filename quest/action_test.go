package quest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func actionExec() *ActionExecutor {
	return NewActionExecutor(zap.NewNop())
}

func TestExecuteAll_Order(t *testing.T) {
	ctx := newFakeActionCtx("p1", true)
	actionExec().ExecuteAll([]ActionDef{
		{Type: ActionSetFlag, Params: Params{"key": "a"}},
		{Type: ActionBroadcast, Params: Params{"text": "hello"}},
		{Type: ActionSetFlag, Params: Params{"key": "b", "value": false}},
	}, ctx)

	assert.Equal(t, []string{
		"set_flag:a=true",
		"broadcast:hello",
		"set_flag:b=false",
	}, ctx.calls)
}

func TestExecuteAll_UnknownTypeSkipped(t *testing.T) {
	ctx := newFakeActionCtx("p1", true)
	actionExec().ExecuteAll([]ActionDef{
		{Type: "NO_SUCH_ACTION", Params: Params{}},
		{Type: ActionBroadcast, Params: Params{"text": "still runs"}},
	}, ctx)
	assert.Equal(t, []string{"broadcast:still runs"}, ctx.calls)
}

func TestExecuteAll_MalformedSkipped(t *testing.T) {
	ctx := newFakeActionCtx("p1", true)
	actionExec().ExecuteAll([]ActionDef{
		{Type: ActionMessage, Params: Params{}}, // missing text
		{Type: ActionBroadcast, Params: Params{"text": "ok"}},
	}, ctx)
	assert.Equal(t, []string{"broadcast:ok"}, ctx.calls)
}

func TestExecuteAll_OfflineSkipsPlayerActions(t *testing.T) {
	ctx := newFakeActionCtx("p1", false)
	actionExec().ExecuteAll([]ActionDef{
		{Type: ActionMessage, Params: Params{"text": "hi"}},
		{Type: ActionTeleport, Params: Params{"world": "overworld", "x": 1, "y": 2, "z": 3}},
		{Type: ActionStartDialogue, Params: Params{"npc_id": "n", "dialogue_id": "d"}},
		{Type: ActionTitle, Params: Params{"title": "t"}},
		{Type: ActionSound, Params: Params{"sound": "s"}},
		{Type: ActionGiveItem, Params: Params{"item_id": "sword"}},
		// Player-independent actions still run.
		{Type: ActionSetFlag, Params: Params{"key": "done"}},
		{Type: ActionConsoleCommand, Params: Params{"command": "say hi"}},
		{Type: ActionBroadcast, Params: Params{"text": "all"}},
		{Type: ActionSetWorldState, Params: Params{"key": "k", "value": 1}},
	}, ctx)

	assert.Equal(t, []string{
		"set_flag:done=true",
		"command:say hi",
		"broadcast:all",
		"world:k=1",
	}, ctx.calls)
}

func TestAction_Teleport(t *testing.T) {
	ctx := newFakeActionCtx("p1", true)
	actionExec().ExecuteAll([]ActionDef{
		{Type: ActionTeleport, Params: Params{"world": "nether", "x": 10, "y": 64, "z": -5}},
	}, ctx)
	assert.Equal(t, []string{"teleport:nether:10,64,-5"}, ctx.calls)
}

func TestAction_MessageTranslatesColors(t *testing.T) {
	ctx := newFakeActionCtx("p1", true)
	actionExec().ExecuteAll([]ActionDef{
		{Type: ActionMessage, Params: Params{"text": "&aWell done!"}},
	}, ctx)
	assert.Equal(t, []string{"message:§aWell done!"}, ctx.calls)
}

func TestAction_SetWorldState(t *testing.T) {
	ctx := newFakeActionCtx("p1", true)
	exec := actionExec()
	exec.ExecuteAll([]ActionDef{
		{Type: ActionSetWorldState, Params: Params{"key": "progress", "value": 10}},
		{Type: ActionSetWorldState, Params: Params{"key": "progress", "increment_by": 5}},
	}, ctx)
	assert.Equal(t, 15, ctx.worldState["progress"])

	// Neither value nor increment_by is malformed, skipped.
	exec.ExecuteAll([]ActionDef{
		{Type: ActionSetWorldState, Params: Params{"key": "progress"}},
	}, ctx)
	assert.Equal(t, 15, ctx.worldState["progress"])
}

func TestAction_GiveItemDefaults(t *testing.T) {
	ctx := newFakeActionCtx("p1", true)
	actionExec().ExecuteAll([]ActionDef{
		{Type: ActionGiveItem, Params: Params{"item_id": "bread"}},
	}, ctx)
	assert.Equal(t, []string{"item:bread x1"}, ctx.calls)
}

func TestAction_ClearFlag(t *testing.T) {
	ctx := newFakeActionCtx("p1", true)
	ctx.flags["k"] = true
	actionExec().ExecuteAll([]ActionDef{
		{Type: ActionClearFlag, Params: Params{"key": "k"}},
	}, ctx)
	assert.False(t, ctx.flags["k"])
}

func TestAction_CustomRegisteredType(t *testing.T) {
	exec := actionExec()
	var ran bool
	exec.Register("CUSTOM", func(p Params, ctx ActionContext) error {
		ran = true
		return nil
	})
	exec.ExecuteAll([]ActionDef{{Type: "CUSTOM", Params: Params{}}}, newFakeActionCtx("p1", true))
	assert.True(t, ran)
}

func TestTranslateColors(t *testing.T) {
	assert.Equal(t, "§aGreen §lBold", TranslateColors("&aGreen &lBold"))
	assert.Equal(t, "§0§9§A§F§K§r", TranslateColors("&0&9&A&F&K&r"))
	// Non-code ampersands are left alone.
	assert.Equal(t, "fish & chips", TranslateColors("fish & chips"))
	assert.Equal(t, "&z stays", TranslateColors("&z stays"))
	// Trailing ampersand survives.
	assert.Equal(t, "end&", TranslateColors("end&"))
	assert.Equal(t, "", TranslateColors(""))
}
