package tagall

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestFetcher_FetchMembers(t *testing.T) {
	ctx := context.Background()
	const groupID = int64(-1001)

	t.Run("AllBotPageDoesNotStopScan", func(t *testing.T) {
		dir := new(mockDirectory)
		bots := []Member{{ID: 900, IsBot: true}, {ID: 901, IsBot: true}}
		humans := members(1, 2)

		dir.On("Participants", ctx, groupID, 0, PageLimit).Return(Page{Raw: 2, Members: bots}, nil).Once()
		dir.On("Participants", ctx, groupID, 100, PageLimit).Return(Page{Raw: 2, Members: humans}, nil).Once()
		dir.On("Participants", ctx, groupID, 200, PageLimit).Return(Page{}, nil).Once()

		got := NewFetcher(dir, discardLogger()).FetchMembers(ctx, groupID)

		assert.Equal(t, humans, got)
		dir.AssertExpectations(t)
	})

	t.Run("UnionInEncounterOrderWithoutDuplicates", func(t *testing.T) {
		dir := new(mockDirectory)
		first := append(members(1, 2), Member{ID: 50, IsBot: true})
		second := append(members(2, 2), members(10, 1)...) // member 2 seen again

		dir.On("Participants", ctx, groupID, 0, PageLimit).Return(Page{Raw: 3, Members: first}, nil).Once()
		dir.On("Participants", ctx, groupID, 100, PageLimit).Return(Page{Raw: 3, Members: second}, nil).Once()
		dir.On("Participants", ctx, groupID, 200, PageLimit).Return(Page{Raw: 0}, nil).Once()

		got := NewFetcher(dir, discardLogger()).FetchMembers(ctx, groupID)

		want := []Member{members(1, 1)[0], members(2, 1)[0], members(3, 1)[0], members(10, 1)[0]}
		assert.Equal(t, want, got)
		dir.AssertExpectations(t)
	})

	t.Run("ErrorYieldsEmpty", func(t *testing.T) {
		dir := new(mockDirectory)
		dir.On("Participants", ctx, groupID, 0, PageLimit).Return(Page{Raw: 1, Members: members(1, 1)}, nil).Once()
		dir.On("Participants", ctx, groupID, 100, PageLimit).Return(Page{}, errors.New("rpc error")).Once()

		got := NewFetcher(dir, discardLogger()).FetchMembers(ctx, groupID)

		assert.Empty(t, got)
		dir.AssertExpectations(t)
	})

	t.Run("EmptyGroup", func(t *testing.T) {
		dir := new(mockDirectory)
		dir.On("Participants", ctx, groupID, 0, PageLimit).Return(Page{}, nil).Once()

		got := NewFetcher(dir, discardLogger()).FetchMembers(ctx, groupID)

		assert.Empty(t, got)
		dir.AssertNumberOfCalls(t, "Participants", 1)
	})

	t.Run("OffsetAdvancesByLimit", func(t *testing.T) {
		dir := new(mockDirectory)
		dir.On("Participants", ctx, groupID, mock.Anything, PageLimit).Return(Page{}, nil).Once()

		NewFetcher(dir, discardLogger()).FetchMembers(ctx, groupID)

		dir.AssertCalled(t, "Participants", ctx, groupID, 0, PageLimit)
	})
}
