package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllFlagGrantsEveryOperation(t *testing.T) {
	f := Flags{All: true}

	assert.Equal(t, EffectiveFlags{Read: true, Create: true, Update: true, Delete: true, Download: true}, f.Effective())
	for _, op := range []Operation{OpRead, OpCreate, OpUpdate, OpDelete, OpDownload} {
		assert.True(t, f.Allows(op), op)
	}
}

func TestSpecificFlagsAreIndependent(t *testing.T) {
	f := Flags{Read: true, Download: true}

	assert.True(t, f.EffectiveRead())
	assert.False(t, f.EffectiveCreate())
	assert.False(t, f.EffectiveUpdate())
	assert.False(t, f.EffectiveDelete())
	assert.True(t, f.EffectiveDownload())
	assert.False(t, f.Allows(Operation("approve")))
}

func TestAnyFlag(t *testing.T) {
	assert.False(t, Flags{}.Any())
	assert.True(t, Flags{Delete: true}.Any())
	assert.True(t, FullAccess().Any())
}
