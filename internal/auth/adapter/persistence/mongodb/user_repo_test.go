package mongodb_test

import (
	"context"
	"testing"

	"edwin/internal/auth/adapter/persistence/mongodb"
	"edwin/internal/auth/domain/model"
	authtestutil "edwin/internal/auth/testutil"
	"edwin/internal/shared/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MongoUserRepoTestSuite struct {
	suite.Suite
	repo     *mongodb.MongoUserRepository
	fixtures *authtestutil.UserFixture
	ctx      context.Context
}

func (suite *MongoUserRepoTestSuite) SetupTest() {
	suite.ctx = context.Background()
	db := testutil.MongoDatabase(suite.T())

	repo, err := mongodb.NewMongoUserRepository(suite.ctx, db)
	require.NoError(suite.T(), err)
	suite.repo = repo
	suite.fixtures = authtestutil.NewUserFixture()
}

func (suite *MongoUserRepoTestSuite) TestCreate_DuplicateEmail() {
	u := suite.fixtures.UserWithEmail("Dup@Example.com")
	require.NoError(suite.T(), suite.repo.Create(suite.ctx, u))

	again := suite.fixtures.UserWithEmail("dup@example.com")
	again.ID = primitive.NilObjectID
	err := suite.repo.Create(suite.ctx, again)
	assert.ErrorIs(suite.T(), err, model.ErrUserExists)
}

func (suite *MongoUserRepoTestSuite) TestGetByEmail_CaseInsensitive() {
	u := suite.fixtures.UserWithEmail("ada@example.com")
	require.NoError(suite.T(), suite.repo.Create(suite.ctx, u))

	got, err := suite.repo.GetByEmail(suite.ctx, "  ADA@example.com ")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), u.ID, got.ID)

	_, err = suite.repo.GetByEmail(suite.ctx, "nobody@example.com")
	assert.ErrorIs(suite.T(), err, model.ErrUserNotFound)
}

func (suite *MongoUserRepoTestSuite) TestUpdateProfile_OnlyProvidedFields() {
	u := suite.fixtures.ValidUser()
	u.Avatar = "old.png"
	require.NoError(suite.T(), suite.repo.Create(suite.ctx, u))

	name := "Renamed"
	got, err := suite.repo.UpdateProfile(suite.ctx, u.ID, model.ProfileUpdate{Name: &name})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Renamed", got.Name)
	assert.Equal(suite.T(), "old.png", got.Avatar)
}

func (suite *MongoUserRepoTestSuite) TestWorkspaceLinks() {
	u := suite.fixtures.ValidUser()
	require.NoError(suite.T(), suite.repo.Create(suite.ctx, u))
	ws := primitive.NewObjectID()

	require.NoError(suite.T(), suite.repo.AddWorkspace(suite.ctx, u.ID, ws))
	require.NoError(suite.T(), suite.repo.AddWorkspace(suite.ctx, u.ID, ws))
	got, err := suite.repo.GetByID(suite.ctx, u.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []primitive.ObjectID{ws}, got.Workspaces)

	require.NoError(suite.T(), suite.repo.RemoveWorkspaceFromAll(suite.ctx, ws))
	got, err = suite.repo.GetByID(suite.ctx, u.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), got.Workspaces)
}

func (suite *MongoUserRepoTestSuite) TestSearch_PrefixAndLimit() {
	for _, email := range []string{"anna@example.com", "andrew@example.com", "bob@example.com"} {
		require.NoError(suite.T(), suite.repo.Create(suite.ctx, suite.fixtures.UserWithEmail(email)))
	}

	got, err := suite.repo.Search(suite.ctx, "AN", 20)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), got, 2)

	got, err = suite.repo.Search(suite.ctx, "a.*", 20)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), got, "regex metacharacters are matched literally")
}

func TestMongoUserRepoTestSuite(t *testing.T) {
	suite.Run(t, new(MongoUserRepoTestSuite))
}
