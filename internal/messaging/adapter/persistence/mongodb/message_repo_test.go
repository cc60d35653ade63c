package mongodb_test

import (
	"context"
	"testing"
	"time"

	"edwin/internal/messaging/adapter/persistence/mongodb"
	"edwin/internal/messaging/domain/model"
	"edwin/internal/shared/pagination"
	"edwin/internal/shared/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessagingRepoTestSuite struct {
	suite.Suite
	ctx           context.Context
	messages      *mongodb.MongoMessageRepository
	conversations *mongodb.MongoConversationRepository
	ws            primitive.ObjectID
	alice, bob    primitive.ObjectID
}

func (suite *MessagingRepoTestSuite) SetupTest() {
	suite.ctx = context.Background()
	db := testutil.MongoDatabase(suite.T())

	var err error
	suite.messages, err = mongodb.NewMongoMessageRepository(suite.ctx, db)
	require.NoError(suite.T(), err)
	suite.conversations, err = mongodb.NewMongoConversationRepository(suite.ctx, db)
	require.NoError(suite.T(), err)

	suite.ws = primitive.NewObjectID()
	suite.alice = primitive.NewObjectID()
	suite.bob = primitive.NewObjectID()
}

func TestMessagingRepoTestSuite(t *testing.T) {
	suite.Run(t, new(MessagingRepoTestSuite))
}

func (suite *MessagingRepoTestSuite) direct(from, to primitive.ObjectID, content string) *model.Message {
	m := &model.Message{Workspace: suite.ws, Sender: from, Recipient: &to, Content: content, ReadBy: []primitive.ObjectID{from}}
	require.NoError(suite.T(), suite.messages.Create(suite.ctx, m))
	return m
}

func (suite *MessagingRepoTestSuite) TestListDirect_BothDirectionsInOrder() {
	suite.direct(suite.alice, suite.bob, "one")
	suite.direct(suite.bob, suite.alice, "two")
	suite.direct(suite.alice, suite.bob, "three")
	suite.direct(suite.alice, primitive.NewObjectID(), "elsewhere")

	items, total, err := suite.messages.ListDirect(suite.ctx, suite.ws, suite.bob, suite.alice, pagination.Normalize(1, 20))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), total)
	require.Len(suite.T(), items, 3)
	assert.Equal(suite.T(), "one", items[0].Content)
	assert.Equal(suite.T(), "three", items[2].Content)
}

func (suite *MessagingRepoTestSuite) TestUnreadCountAndMarkRead() {
	m := suite.direct(suite.alice, suite.bob, "hi")
	suite.direct(suite.alice, suite.bob, "there")

	n, err := suite.messages.CountUnreadDirect(suite.ctx, suite.ws, suite.bob)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), n)

	n, err = suite.messages.CountUnreadDirect(suite.ctx, suite.ws, suite.alice)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), n)

	read, err := suite.messages.MarkRead(suite.ctx, m.ID, suite.bob)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), read.ReadBy, 2)

	_, err = suite.messages.MarkRead(suite.ctx, m.ID, suite.bob)
	require.NoError(suite.T(), err)

	n, err = suite.messages.CountUnreadDirect(suite.ctx, suite.ws, suite.bob)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), n)
}

func (suite *MessagingRepoTestSuite) TestConversations_SortedByLastMessage() {
	older := &model.Conversation{Workspace: suite.ws, Name: "older", Participants: []primitive.ObjectID{suite.alice, suite.bob}}
	newer := &model.Conversation{Workspace: suite.ws, Name: "newer", Participants: []primitive.ObjectID{suite.alice, suite.bob}}
	require.NoError(suite.T(), suite.conversations.Create(suite.ctx, older))
	require.NoError(suite.T(), suite.conversations.Create(suite.ctx, newer))

	now := time.Now().UTC()
	require.NoError(suite.T(), suite.conversations.Touch(suite.ctx, newer.ID, now.Add(-time.Hour), "first"))
	require.NoError(suite.T(), suite.conversations.Touch(suite.ctx, older.ID, now, "latest"))

	list, err := suite.conversations.ListByParticipant(suite.ctx, suite.ws, suite.bob)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), list, 2)
	assert.Equal(suite.T(), "older", list[0].Name)
	assert.Equal(suite.T(), "latest", list[0].LastMessagePreview)
}

func (suite *MessagingRepoTestSuite) TestRemoveFromWorkspace() {
	c := &model.Conversation{Workspace: suite.ws, Name: "team", Participants: []primitive.ObjectID{suite.alice, suite.bob}}
	require.NoError(suite.T(), suite.conversations.Create(suite.ctx, c))

	require.NoError(suite.T(), suite.conversations.RemoveFromWorkspace(suite.ctx, suite.ws, suite.bob))

	got, err := suite.conversations.GetByID(suite.ctx, c.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []primitive.ObjectID{suite.alice}, got.Participants)
}
