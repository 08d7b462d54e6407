package quest

import (
	"fmt"
	"time"

	"github.com/emberworks/questengine/model"
)

// Shared in-memory fakes for the three context interfaces.

type fakePlayer struct{ id string }

func (p *fakePlayer) ID() string { return p.id }

type fakeConditionCtx struct {
	playerID    string
	flags       map[string]bool
	questStates map[string]model.RunState
	jobLevels   map[string]int
	activeJob   string
	housing     int
	rank        int
	visited     map[string]bool
	inside      map[string]bool
	worldState  map[string]int
	events      map[string]bool
	hour        int
}

func newFakeConditionCtx(playerID string) *fakeConditionCtx {
	return &fakeConditionCtx{
		playerID:    playerID,
		flags:       map[string]bool{},
		questStates: map[string]model.RunState{},
		jobLevels:   map[string]int{},
		visited:     map[string]bool{},
		inside:      map[string]bool{},
		worldState:  map[string]int{},
		events:      map[string]bool{},
	}
}

func (c *fakeConditionCtx) PlayerID() string { return c.playerID }
func (c *fakeConditionCtx) FlagEquals(key string, expected bool) bool {
	return c.flags[key] == expected
}
func (c *fakeConditionCtx) QuestState(questID string) (model.RunState, bool) {
	st, ok := c.questStates[questID]
	return st, ok
}
func (c *fakeConditionCtx) JobLevel(jobID string) int       { return c.jobLevels[jobID] }
func (c *fakeConditionCtx) IsJobActive(jobID string) bool   { return c.activeJob == jobID }
func (c *fakeConditionCtx) HousingLevel() int               { return c.housing }
func (c *fakeConditionCtx) RankValue() int                  { return c.rank }
func (c *fakeConditionCtx) HasVisitedRegion(id string) bool { return c.visited[id] }
func (c *fakeConditionCtx) IsInsideRegion(id string) bool   { return c.inside[id] }
func (c *fakeConditionCtx) WorldStateInt(key string, def int) int {
	if v, ok := c.worldState[key]; ok {
		return v
	}
	return def
}
func (c *fakeConditionCtx) IsEventActive(id string) bool { return c.events[id] }
func (c *fakeConditionCtx) IsTimeInRange(startHour, endHour int) bool {
	return HourInRange(c.hour, startHour, endHour)
}

type fakeActionCtx struct {
	playerID   string
	online     bool
	calls      []string
	flags      map[string]bool
	worldState map[string]int
}

func newFakeActionCtx(playerID string, online bool) *fakeActionCtx {
	return &fakeActionCtx{
		playerID:   playerID,
		online:     online,
		flags:      map[string]bool{},
		worldState: map[string]int{},
	}
}

func (c *fakeActionCtx) record(format string, args ...interface{}) {
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
}

func (c *fakeActionCtx) PlayerID() string { return c.playerID }
func (c *fakeActionCtx) Player() PlayerRef {
	if !c.online {
		return nil
	}
	return &fakePlayer{id: c.playerID}
}
func (c *fakeActionCtx) SetFlag(playerID, key string, value bool) {
	c.flags[key] = value
	c.record("set_flag:%s=%v", key, value)
}
func (c *fakeActionCtx) StartDialogue(p PlayerRef, npcID, dialogueID string) {
	c.record("dialogue:%s/%s", npcID, dialogueID)
}
func (c *fakeActionCtx) Teleport(p PlayerRef, loc Location) {
	c.record("teleport:%s:%.0f,%.0f,%.0f", loc.World, loc.X, loc.Y, loc.Z)
}
func (c *fakeActionCtx) SendMessage(p PlayerRef, text string) {
	c.record("message:%s", text)
}
func (c *fakeActionCtx) SendTitle(p PlayerRef, title, subtitle string, fadeIn, stay, fadeOut time.Duration) {
	c.record("title:%s/%s", title, subtitle)
}
func (c *fakeActionCtx) PlaySound(p PlayerRef, soundKey string, volume, pitch float64) {
	c.record("sound:%s", soundKey)
}
func (c *fakeActionCtx) RunConsoleCommand(text string) {
	c.record("command:%s", text)
}
func (c *fakeActionCtx) GiveItem(p PlayerRef, itemID string, amount int, bindOnPickup bool) {
	c.record("item:%s x%d", itemID, amount)
}
func (c *fakeActionCtx) GiveCrate(p PlayerRef, crateID string, amount int) {
	c.record("crate:%s x%d", crateID, amount)
}
func (c *fakeActionCtx) GrantCosmetic(p PlayerRef, cosmeticID, variant string) {
	c.record("cosmetic:%s/%s", cosmeticID, variant)
}
func (c *fakeActionCtx) SetWorldState(key string, absolute *int, increment *int) {
	if absolute != nil {
		c.worldState[key] = *absolute
		c.record("world:%s=%d", key, *absolute)
		return
	}
	c.worldState[key] += *increment
	c.record("world:%s+=%d", key, *increment)
}
func (c *fakeActionCtx) Broadcast(text string) {
	c.record("broadcast:%s", text)
}

type fakeRewardCtx struct {
	playerID string
	online   bool
	grants   []string
	keys     []string // idempotency keys of currency grants, in order
}

func newFakeRewardCtx(playerID string, online bool) *fakeRewardCtx {
	return &fakeRewardCtx{playerID: playerID, online: online}
}

func (c *fakeRewardCtx) record(format string, args ...interface{}) {
	c.grants = append(c.grants, fmt.Sprintf(format, args...))
}

func (c *fakeRewardCtx) PlayerID() string { return c.playerID }
func (c *fakeRewardCtx) Player() PlayerRef {
	if !c.online {
		return nil
	}
	return &fakePlayer{id: c.playerID}
}
func (c *fakeRewardCtx) AddCurrency(playerID, currencyID string, amount float64, idempotencyKey string) {
	c.keys = append(c.keys, idempotencyKey)
	c.record("currency:%s=%.1f", currencyID, amount)
}
func (c *fakeRewardCtx) AddJobXP(playerID, jobID string, xp int) {
	c.record("job_xp:%s=%d", jobID, xp)
}
func (c *fakeRewardCtx) AddHousingXP(playerID string, xp int) {
	c.record("housing_xp:%d", xp)
}
func (c *fakeRewardCtx) AddRankXP(playerID string, xp int) {
	c.record("rank_xp:%d", xp)
}
func (c *fakeRewardCtx) GiveCrate(p PlayerRef, crateID string, amount int) {
	c.record("crate:%s x%d", crateID, amount)
}
func (c *fakeRewardCtx) GiveItem(p PlayerRef, itemID string, amount int, bindOnPickup bool) {
	c.record("item:%s x%d", itemID, amount)
}
func (c *fakeRewardCtx) GrantCosmetic(p PlayerRef, cosmeticID, variant string) {
	c.record("cosmetic:%s/%s", cosmeticID, variant)
}
func (c *fakeRewardCtx) SetFlag(playerID, key string, value bool) {
	c.record("flag:%s=%v", key, value)
}
