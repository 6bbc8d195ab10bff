package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/ilview/internal/core/domain"
)

func TestMemberKind_IsKnown(t *testing.T) {
	tests := []struct {
		kind  domain.MemberKind
		known bool
	}{
		{domain.KindAssembly, true},
		{domain.KindNamespace, true},
		{domain.KindType, true},
		{domain.KindMethod, true},
		{domain.KindField, true},
		{domain.KindProperty, true},
		{domain.KindEvent, true},
		{"constructor", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.known, tt.kind.IsKnown())
		})
	}
}

func TestMemberKey(t *testing.T) {
	root := domain.AssemblyKey("/bin/A.dll")
	assert.True(t, root.IsAssembly())
	assert.Equal(t, "/bin/A.dll", root.String())

	member := domain.MemberKey{Assembly: "/bin/A.dll", Symbol: "M:Demo.T.M1"}
	assert.False(t, member.IsAssembly())
	assert.Equal(t, "/bin/A.dll!M:Demo.T.M1", member.String())
}

func TestSessionState_String(t *testing.T) {
	tests := []struct {
		state domain.SessionState
		want  string
	}{
		{domain.StateStopped, "stopped"},
		{domain.StateStarting, "starting"},
		{domain.StateRunning, "running"},
		{domain.StateStopping, "stopping"},
		{domain.StateCrashed, "crashed"},
		{domain.SessionState(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}
