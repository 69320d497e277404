package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talentops/onboard/model"
)

func chain(names ...string) []*Definition {
	defs := make([]*Definition, 0, len(names))
	for i, name := range names {
		def := &Definition{Name: name, Kind: KindAutomatic, Completed: model.StatusInProgress}
		if i+1 < len(names) {
			def.Next = names[i+1]
		}
		defs = append(defs, def)
	}
	return defs
}

func TestNewValidChain(t *testing.T) {
	reg, err := New(chain("a", "b", "c")...)
	assert.NoError(t, err)
	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, "a", reg.First().Name)
	assert.Equal(t, []string{"a", "b", "c"}, reg.Names())
}

func TestNewRejectsMalformedChains(t *testing.T) {
	testCases := []struct {
		name   string
		defs   []*Definition
		errMsg string
	}{
		{
			name:   "empty",
			defs:   nil,
			errMsg: "at least one step",
		},
		{
			name: "duplicate name",
			defs: append(chain("a", "b"), &Definition{Name: "a", Kind: KindAutomatic}),
		},
		{
			name: "unknown kind",
			defs: []*Definition{{Name: "a", Kind: "mystery"}},
		},
		{
			name: "dangling next",
			defs: []*Definition{
				{Name: "a", Kind: KindAutomatic, Next: "ghost"},
				{Name: "b", Kind: KindAutomatic},
			},
			errMsg: "unknown step",
		},
		{
			name: "branching",
			defs: []*Definition{
				{Name: "a", Kind: KindAutomatic, Next: "c"},
				{Name: "b", Kind: KindAutomatic, Next: "c"},
				{Name: "c", Kind: KindAutomatic},
			},
			errMsg: "multiple predecessors",
		},
		{
			name: "cycle",
			defs: []*Definition{
				{Name: "a", Kind: KindAutomatic, Next: "b"},
				{Name: "b", Kind: KindAutomatic, Next: "a"},
				{Name: "c", Kind: KindAutomatic},
			},
		},
		{
			name: "two terminals",
			defs: []*Definition{
				{Name: "a", Kind: KindAutomatic, Next: "b"},
				{Name: "b", Kind: KindAutomatic},
				{Name: "c", Kind: KindAutomatic},
			},
			errMsg: "exactly one terminal",
		},
		{
			name: "wait step without ready predicate",
			defs: []*Definition{
				{Name: "a", Kind: KindWaitForCallback, Waiting: model.StatusWaitingForSignature},
			},
			errMsg: "ready predicate",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.defs...)
			assert.Error(t, err)
			if tc.errMsg != "" {
				assert.Contains(t, err.Error(), tc.errMsg)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	reg, err := New(chain("a", "b")...)
	assert.NoError(t, err)

	def, err := reg.Lookup("b")
	assert.NoError(t, err)
	assert.Equal(t, "b", def.Name)

	_, err = reg.Lookup("ghost")
	assert.ErrorIs(t, err, ErrUnknownStep)
}
