package quest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleQuestYAML = `
id: mine_ten_ores
version: 2
type: side
repeatability: DAILY
arc: mining
chapter: 1
title: "Ten Ores"
description: "Mine ten ores for the foreman."
ui:
  icon: pickaxe
  sort_order: 5
flow:
  mode: SEQUENTIAL
requirements:
  all_of:
    - type: JOB_LEVEL
      params: {job_id: miner, min: 5}
  none_of:
    - type: FLAG
      params: {key: banned_from_mine}
objectives:
  - id: talk_to_foreman
    type: dialogue
    on_complete:
      - type: MESSAGE
        params: {text: "&aOff you go."}
  - id: mine_ores
    type: gather
    target: 10
    on_start:
      - type: MESSAGE
        params: {text: "Get mining."}
rewards:
  currencies: {gold: 50}
  job_xp: {miner: 100}
timing:
  cooldown_seconds: 3600
  expires_after_seconds: 7200
  hard_fail_on_expire: true
`

func TestParseBytes_FullDocument(t *testing.T) {
	def, err := ParseBytes([]byte(sampleQuestYAML))
	require.NoError(t, err)

	assert.Equal(t, "mine_ten_ores", def.ID)
	assert.Equal(t, RepeatDaily, def.Repeatability)
	assert.Equal(t, FlowSequential, def.Flow.Mode)
	assert.True(t, def.Flow.AutoCompleteOnLastObjective, "defaults true when omitted")
	require.Len(t, def.Objectives, 2)
	assert.Equal(t, 1, def.Objectives[0].Target, "missing target coerced to 1")
	assert.Equal(t, 10, def.Objectives[1].Target)
	assert.Equal(t, CountIncrement, def.Objectives[0].CountMode)
	assert.True(t, def.Objectives[0].AutoComplete, "defaults true")
	assert.True(t, def.Objectives[0].AllowPartial, "defaults true")
	require.Len(t, def.Requirements.AllOf, 1)
	assert.Equal(t, ConditionJobLevel, def.Requirements.AllOf[0].Type)
	assert.Equal(t, int64(3600), def.Timing.CooldownSeconds)
	assert.True(t, def.Timing.HardFailOnExpire)
	assert.Equal(t, 50.0, def.Rewards.Currencies["gold"])
}

func TestParseBytes_MinimalDefaults(t *testing.T) {
	def, err := ParseBytes([]byte(`
id: tiny
objectives:
  - id: only
`))
	require.NoError(t, err)
	assert.Equal(t, RepeatOnce, def.Repeatability)
	assert.Equal(t, FlowSequential, def.Flow.Mode)
	assert.True(t, def.Flow.AutoCompleteOnLastObjective)
	assert.Equal(t, 1, def.Objectives[0].Target)
	assert.True(t, def.Objectives[0].AutoComplete)
	assert.True(t, def.Objectives[0].AllowPartial)
	// Collections come back non-nil.
	assert.NotNil(t, def.Rewards.Currencies)
	assert.NotNil(t, def.Rewards.Items)
	assert.NotNil(t, def.Rewards.Actions)
}

func TestParseBytes_ExplicitFalseKept(t *testing.T) {
	def, err := ParseBytes([]byte(`
id: manual
flow:
  mode: PARALLEL
  auto_complete_on_last_objective: false
objectives:
  - id: a
    auto_complete: false
    allow_partial: false
`))
	require.NoError(t, err)
	assert.Equal(t, FlowParallel, def.Flow.Mode)
	assert.False(t, def.Flow.AutoCompleteOnLastObjective)
	assert.False(t, def.Objectives[0].AutoComplete)
	assert.False(t, def.Objectives[0].AllowPartial)
}

func TestParseBytes_Errors(t *testing.T) {
	cases := map[string]string{
		"missing id":           `objectives: [{id: a}]`,
		"no objectives":        `id: q`,
		"objective missing id": "id: q\nobjectives:\n  - type: gather",
		"duplicate objective":  "id: q\nobjectives:\n  - id: a\n  - id: a",
		"bad repeatability":    "id: q\nrepeatability: SOMETIMES\nobjectives: [{id: a}]",
		"bad flow mode":        "id: q\nflow: {mode: SIDEWAYS}\nobjectives: [{id: a}]",
		"bad count mode":       "id: q\nobjectives:\n  - id: a\n    count_mode: WEIRD",
		"not yaml":             `{{{{`,
	}
	for name, doc := range cases {
		_, err := ParseBytes([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestParseBytes_PrunesTypelessEntries(t *testing.T) {
	def, err := ParseBytes([]byte(`
id: pruned
requirements:
  all_of:
    - params: {key: orphan}
    - type: FLAG
      params: {key: kept}
objectives:
  - id: a
    on_complete:
      - params: {text: orphan}
      - type: MESSAGE
        params: {text: kept}
`))
	require.NoError(t, err)
	require.Len(t, def.Requirements.AllOf, 1)
	assert.Equal(t, ConditionFlag, def.Requirements.AllOf[0].Type)
	require.Len(t, def.Objectives[0].OnComplete, 1)
	assert.Equal(t, ActionMessage, def.Objectives[0].OnComplete[0].Type)
}

func TestParseBytes_KeepsUnknownTypedEntries(t *testing.T) {
	// Unknown but typed entries stay: custom types may be registered at
	// runtime, and unregistered ones fail closed during evaluation.
	def, err := ParseBytes([]byte(`
id: custom
requirements:
  all_of:
    - type: MY_CUSTOM_CONDITION
      params: {foo: 1}
objectives:
  - id: a
`))
	require.NoError(t, err)
	require.Len(t, def.Requirements.AllOf, 1)
	assert.Equal(t, ConditionType("MY_CUSTOM_CONDITION"), def.Requirements.AllOf[0].Type)
}
