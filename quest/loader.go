package quest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseFile reads one quest definition document from disk.
func ParseFile(path string) (*QuestDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quest file: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes decodes and normalizes one quest definition document.
// Malformed condition/action entries are dropped by normalization; a bad
// document as a whole returns an error so the registry can skip the file.
func ParseBytes(data []byte) (*QuestDefinition, error) {
	var def QuestDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse quest yaml: %w", err)
	}
	if err := normalize(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

// normalize applies defaults, validates enums and coerces invariants
// (target >= 1, unique objective ids, non-nil collections).
func normalize(def *QuestDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("quest is missing an id")
	}

	if def.Repeatability == "" {
		def.Repeatability = RepeatOnce
	}
	switch def.Repeatability {
	case RepeatOnce, RepeatDaily, RepeatWeekly, RepeatEvent, RepeatInfinite:
	default:
		return fmt.Errorf("quest %s: unknown repeatability %q", def.ID, def.Repeatability)
	}

	if def.Flow.Mode == "" {
		def.Flow.Mode = FlowSequential
		def.Flow.AutoCompleteOnLastObjective = true
	}
	switch def.Flow.Mode {
	case FlowSequential, FlowParallel:
	default:
		return fmt.Errorf("quest %s: unknown flow mode %q", def.ID, def.Flow.Mode)
	}

	if len(def.Objectives) == 0 {
		return fmt.Errorf("quest %s: no objectives", def.ID)
	}
	seen := make(map[string]bool, len(def.Objectives))
	for i := range def.Objectives {
		obj := &def.Objectives[i]
		if obj.ID == "" {
			return fmt.Errorf("quest %s: objective %d is missing an id", def.ID, i)
		}
		if seen[obj.ID] {
			return fmt.Errorf("quest %s: duplicate objective id %q", def.ID, obj.ID)
		}
		seen[obj.ID] = true
		if obj.Target < 1 {
			obj.Target = 1
		}
		if obj.CountMode == "" {
			obj.CountMode = CountIncrement
		}
		switch obj.CountMode {
		case CountIncrement, CountAbsolute:
		default:
			return fmt.Errorf("quest %s: objective %s: unknown count mode %q", def.ID, obj.ID, obj.CountMode)
		}
		if obj.Params == nil {
			obj.Params = Params{}
		}
		obj.Requirements = pruneLogic(def.ID, obj.Requirements)
		obj.OnStart = pruneActions(def.ID, obj.OnStart)
		obj.OnComplete = pruneActions(def.ID, obj.OnComplete)
	}

	def.Requirements = pruneLogic(def.ID, def.Requirements)
	normalizeRewards(&def.Rewards)
	def.Rewards.Actions = pruneActions(def.ID, def.Rewards.Actions)
	return nil
}

// pruneLogic drops condition entries with no type tag; typed-but-unknown
// entries are kept so custom registered conditions keep working, and
// evaluate fail-closed at runtime otherwise.
func pruneLogic(questID string, logic ConditionLogic) ConditionLogic {
	logic.AllOf = pruneConditions(questID, logic.AllOf)
	logic.AnyOf = pruneConditions(questID, logic.AnyOf)
	logic.NoneOf = pruneConditions(questID, logic.NoneOf)
	return logic
}

func pruneConditions(questID string, conds []ConditionDef) []ConditionDef {
	out := conds[:0]
	for _, c := range conds {
		if c.Type == "" {
			continue
		}
		if c.Params == nil {
			c.Params = Params{}
		}
		out = append(out, c)
	}
	return out
}

func pruneActions(questID string, actions []ActionDef) []ActionDef {
	out := actions[:0]
	for _, a := range actions {
		if a.Type == "" {
			continue
		}
		if a.Params == nil {
			a.Params = Params{}
		}
		out = append(out, a)
	}
	return out
}

func normalizeRewards(r *RewardDef) {
	if r.Currencies == nil {
		r.Currencies = map[string]float64{}
	}
	if r.JobXP == nil {
		r.JobXP = map[string]int{}
	}
	if r.Crates == nil {
		r.Crates = []CrateGrant{}
	}
	if r.Items == nil {
		r.Items = []ItemGrant{}
	}
	if r.Cosmetics == nil {
		r.Cosmetics = []CosmeticGrant{}
	}
	if r.Flags == nil {
		r.Flags = map[string]bool{}
	}
	if r.Actions == nil {
		r.Actions = []ActionDef{}
	}
}
