package approval

import (
	"testing"

	"backend/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocType(t *testing.T) {
	dt, err := ParseDocType(" expense ")
	require.NoError(t, err)
	assert.Equal(t, DocTypeExpense, dt)

	_, err = ParseDocType("MEMO")
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeInvalidDocType))
}

func TestDocStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusDeleted.IsTerminal())
}

func TestActionLabelTotalMapping(t *testing.T) {
	cases := map[DocStatus]string{
		StatusApproved:   ActionApproved,
		StatusRejected:   ActionRejected,
		StatusDeleted:    ActionDeleted,
		StatusPending:    ActionModified,
		StatusInProgress: ActionModified,
	}
	for status, want := range cases {
		assert.Equal(t, want, ActionLabel(status), "status %s", status)
	}
	// 未知状态也必须有标签
	assert.Equal(t, ActionModified, ActionLabel(DocStatus("UNKNOWN")))
}

func TestNewApproverStepNormalization(t *testing.T) {
	step := NewApproverStep(1, "  ", "", "경영지원팀", "팀장")
	assert.Equal(t, UnknownApproverID, step.ApproverID)
	assert.Equal(t, UnknownApproverName, step.ApproverName)
	assert.Equal(t, DecisionPending, step.Decision)

	bound := NewApproverStep(2, "emp-7", "김부장", "", "")
	assert.Equal(t, "emp-7", bound.ApproverID)
	assert.Equal(t, "김부장", bound.ApproverName)
}

func TestApprovalLineCurrentIndex(t *testing.T) {
	line := ApprovalLine{
		{Order: 1, Decision: DecisionApproved},
		{Order: 2, Decision: DecisionPending},
		{Order: 3, Decision: DecisionPending},
	}
	assert.Equal(t, 1, line.CurrentIndex())

	line[1].Decision = DecisionApproved
	line[2].Decision = DecisionApproved
	assert.Equal(t, -1, line.CurrentIndex())

	assert.Equal(t, -1, ApprovalLine{}.CurrentIndex())
}

func TestApprovalLineValidate(t *testing.T) {
	good := ApprovalLine{{Order: 1}, {Order: 2}, {Order: 3}}
	require.NoError(t, good.Validate())

	gapped := ApprovalLine{{Order: 1}, {Order: 3}}
	err := gapped.Validate()
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodePolicyStepOrder))
}

func TestApprovalLineDeriveStatus(t *testing.T) {
	assert.Equal(t, StatusPending, ApprovalLine{}.DeriveStatus())

	pending := ApprovalLine{{Decision: DecisionPending}, {Decision: DecisionPending}}
	assert.Equal(t, StatusPending, pending.DeriveStatus())

	partial := ApprovalLine{{Decision: DecisionApproved}, {Decision: DecisionPending}}
	assert.Equal(t, StatusInProgress, partial.DeriveStatus())

	done := ApprovalLine{{Decision: DecisionApproved}, {Decision: DecisionApproved}}
	assert.Equal(t, StatusApproved, done.DeriveStatus())

	rejected := ApprovalLine{{Decision: DecisionApproved}, {Decision: DecisionRejected}}
	assert.Equal(t, StatusRejected, rejected.DeriveStatus())
}

func TestApprovalLineClone(t *testing.T) {
	line := ApprovalLine{{Order: 1, ApproverID: "a"}}
	clone := line.Clone()
	clone[0].Decision = DecisionApproved
	assert.Equal(t, DecisionPending, line[0].Decision)
	assert.Nil(t, ApprovalLine(nil).Clone())
}
