package quest

import "gopkg.in/yaml.v3"

// Repeatability controls how often a finished quest becomes available again.
type Repeatability string

const (
	RepeatOnce     Repeatability = "ONCE"
	RepeatDaily    Repeatability = "DAILY"
	RepeatWeekly   Repeatability = "WEEKLY"
	RepeatEvent    Repeatability = "EVENT"
	RepeatInfinite Repeatability = "INFINITE"
)

// FlowMode controls how objectives unlock.
type FlowMode string

const (
	FlowSequential FlowMode = "SEQUENTIAL"
	FlowParallel   FlowMode = "PARALLEL"
)

// CountMode controls how an increment is applied to objective progress.
type CountMode string

const (
	CountIncrement CountMode = "INCREMENT"
	CountAbsolute  CountMode = "ABSOLUTE"
)

// ConditionType tags a condition leaf.
type ConditionType string

const (
	ConditionFlag          ConditionType = "FLAG"
	ConditionQuestState    ConditionType = "QUEST_STATE"
	ConditionJobLevel      ConditionType = "JOB_LEVEL"
	ConditionJobActive     ConditionType = "JOB_ACTIVE"
	ConditionHousingLevel  ConditionType = "HOUSING_LEVEL"
	ConditionRank          ConditionType = "RANK"
	ConditionRegionVisited ConditionType = "REGION_VISITED"
	ConditionRegionInside  ConditionType = "REGION_INSIDE"
	ConditionWorldState    ConditionType = "WORLD_STATE"
	ConditionEventActive   ConditionType = "EVENT_ACTIVE"
	ConditionTimeRange     ConditionType = "TIME_RANGE"
)

// ActionType tags an action leaf.
type ActionType string

const (
	ActionSetFlag        ActionType = "SET_FLAG"
	ActionClearFlag      ActionType = "CLEAR_FLAG"
	ActionStartDialogue  ActionType = "START_DIALOGUE"
	ActionTeleport       ActionType = "TELEPORT"
	ActionMessage        ActionType = "MESSAGE"
	ActionTitle          ActionType = "TITLE"
	ActionSound          ActionType = "SOUND"
	ActionConsoleCommand ActionType = "CONSOLE_COMMAND"
	ActionGiveItem       ActionType = "GIVE_ITEM"
	ActionSetWorldState  ActionType = "SET_WORLD_STATE"
	ActionBroadcast      ActionType = "BROADCAST"
)

// JobAnyActive is the sentinel job key meaning "the player's active job".
const JobAnyActive = "ANY_ACTIVE"

// ConditionDef is one typed condition leaf with an opaque parameter map.
type ConditionDef struct {
	Type   ConditionType `yaml:"type"`
	Params Params        `yaml:"params"`
}

// ActionDef is one typed action leaf with an opaque parameter map.
type ActionDef struct {
	Type   ActionType `yaml:"type"`
	Params Params     `yaml:"params"`
}

// ConditionLogic is a three-list boolean expression over condition leaves.
// Empty lists are vacuously true; an empty AnyOf is ignored entirely.
type ConditionLogic struct {
	AllOf  []ConditionDef `yaml:"all_of"`
	AnyOf  []ConditionDef `yaml:"any_of"`
	NoneOf []ConditionDef `yaml:"none_of"`
}

// CrateGrant is one crate entry in a reward bundle.
type CrateGrant struct {
	ID     string `yaml:"id"`
	Amount int    `yaml:"amount"`
}

// ItemGrant is one item entry in a reward bundle.
type ItemGrant struct {
	ID           string `yaml:"id"`
	Amount       int    `yaml:"amount"`
	BindOnPickup bool   `yaml:"bind_on_pickup"`
}

// CosmeticGrant is one cosmetic entry in a reward bundle.
type CosmeticGrant struct {
	ID      string `yaml:"id"`
	Variant string `yaml:"variant"`
}

// RewardDef is the structured grant bundle applied on quest completion.
// All collections default to empty, never nil, after loading.
type RewardDef struct {
	Currencies map[string]float64 `yaml:"currencies"`
	JobXP      map[string]int     `yaml:"job_xp"`
	HousingXP  int                `yaml:"housing_xp"`
	RankXP     int                `yaml:"rank_xp"`
	Crates     []CrateGrant       `yaml:"crates"`
	Items      []ItemGrant        `yaml:"items"`
	Cosmetics  []CosmeticGrant    `yaml:"cosmetics"`
	Flags      map[string]bool    `yaml:"flags"`
	Actions    []ActionDef        `yaml:"actions"`
}

// TimingDef holds a quest's timing rules. Zero values disable each rule.
type TimingDef struct {
	CooldownSeconds     int64 `yaml:"cooldown_seconds"`
	ExpiresAfterSeconds int64 `yaml:"expires_after_seconds"`
	HardFailOnExpire    bool  `yaml:"hard_fail_on_expire"`
}

// FlowDef holds a quest's objective flow settings.
type FlowDef struct {
	Mode                        FlowMode `yaml:"mode"`
	AutoCompleteOnLastObjective bool     `yaml:"auto_complete_on_last_objective"`
}

// UnmarshalYAML defaults auto_complete_on_last_objective to true when the
// key is absent.
func (f *FlowDef) UnmarshalYAML(value *yaml.Node) error {
	type rawFlow FlowDef
	raw := rawFlow{AutoCompleteOnLastObjective: true}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*f = FlowDef(raw)
	return nil
}

// UIDef carries display hints. SortOrder drives registry ordering.
type UIDef struct {
	Icon      string `yaml:"icon"`
	SortOrder int    `yaml:"sort_order"`
	Hidden    bool   `yaml:"hidden"`
}

// ObjectiveDef is one sub-goal of a quest. Target is always >= 1 after
// loading; ID is unique within its quest.
type ObjectiveDef struct {
	ID           string         `yaml:"id"`
	Type         string         `yaml:"type"`
	Target       int            `yaml:"target"`
	CountMode    CountMode      `yaml:"count_mode"`
	AutoComplete bool           `yaml:"auto_complete"`
	AllowPartial bool           `yaml:"allow_partial"`
	Requirements ConditionLogic `yaml:"requirements"`
	OnStart      []ActionDef    `yaml:"on_start"`
	OnComplete   []ActionDef    `yaml:"on_complete"`
	Params       Params         `yaml:"params"`
}

// UnmarshalYAML defaults auto_complete and allow_partial to true when the
// keys are absent.
func (o *ObjectiveDef) UnmarshalYAML(value *yaml.Node) error {
	type rawObjective ObjectiveDef
	raw := rawObjective{AutoComplete: true, AllowPartial: true}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*o = ObjectiveDef(raw)
	return nil
}

// QuestDefinition is the immutable static description of a quest. Instances
// are shared and safe for concurrent reads once loaded; the objectives slice
// order is the SEQUENTIAL execution order.
type QuestDefinition struct {
	ID            string         `yaml:"id"`
	Version       int            `yaml:"version"`
	Type          string         `yaml:"type"`
	Repeatability Repeatability  `yaml:"repeatability"`
	Arc           string         `yaml:"arc"`
	Chapter       int            `yaml:"chapter"`
	Category      string         `yaml:"category"`
	Title         string         `yaml:"title"`
	Description   string         `yaml:"description"`
	UI            UIDef          `yaml:"ui"`
	Flow          FlowDef        `yaml:"flow"`
	Requirements  ConditionLogic `yaml:"requirements"`
	Objectives    []ObjectiveDef `yaml:"objectives"`
	Rewards       RewardDef      `yaml:"rewards"`
	Timing        TimingDef      `yaml:"timing"`
}

// Objective returns the objective with the given id and its index.
func (d *QuestDefinition) Objective(id string) (*ObjectiveDef, int, bool) {
	for i := range d.Objectives {
		if d.Objectives[i].ID == id {
			return &d.Objectives[i], i, true
		}
	}
	return nil, 0, false
}

// Repeatable reports whether the quest can be run more than once.
func (d *QuestDefinition) Repeatable() bool {
	return d.Repeatability != RepeatOnce
}
