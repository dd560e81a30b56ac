package services

import (
	"sync"

	"github.com/yukikurage/earth-fighter-api/internal/authz"
	"github.com/yukikurage/earth-fighter-api/internal/models"
)

func (suite *ServiceTestSuite) TestRename() {
	alice := suite.signup("alice")

	user, err := suite.users.Rename(suite.ctx, alice.ID, alice.ID, "alicia")
	suite.Require().NoError(err)
	suite.Equal("alicia", user.Username)

	// Keeping the current name is not a conflict with oneself.
	_, err = suite.users.Rename(suite.ctx, alice.ID, alice.ID, "alicia")
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestRename_OtherUserForbidden() {
	alice := suite.signup("alice")
	bob := suite.signup("bob")

	_, err := suite.users.Rename(suite.ctx, bob.ID, alice.ID, "hacked")
	suite.ErrorIs(err, authz.ErrForbidden)
}

func (suite *ServiceTestSuite) TestRename_TakenNameIsConflict() {
	alice := suite.signup("alice")
	suite.signup("bob")

	_, err := suite.users.Rename(suite.ctx, alice.ID, alice.ID, "bob")
	suite.ErrorIs(err, ErrUsernameTaken)
	suite.ErrorIs(err, authz.ErrConflict)
}

func (suite *ServiceTestSuite) TestRename_ConcurrentSameName() {
	renamers := []*models.User{suite.signup("alice"), suite.signup("bob")}

	var checked sync.WaitGroup
	checked.Add(len(renamers))
	users := NewUserService(&checkBarrierUserRepo{UserRepository: suite.userRepo, checked: &checked})

	var wg sync.WaitGroup
	errs := make([]error, len(renamers))
	for i, u := range renamers {
		wg.Add(1)
		go func(i int, userID uint64) {
			defer wg.Done()
			_, errs[i] = users.Rename(suite.ctx, userID, userID, "carol")
		}(i, u.ID)
	}
	wg.Wait()

	renamed := 0
	for _, err := range errs {
		if err == nil {
			renamed++
			continue
		}
		suite.ErrorIs(err, ErrUsernameTaken)
	}
	suite.Equal(1, renamed)
	suite.Equal(int64(1), suite.countLiveUsers("carol"))
}

func (suite *ServiceTestSuite) TestChangePassword() {
	alice := suite.signup("alice")
	bob := suite.signup("bob")

	suite.ErrorIs(suite.users.ChangePassword(suite.ctx, bob.ID, alice.ID, "newpassword"), authz.ErrForbidden)
	suite.ErrorIs(suite.users.ChangePassword(suite.ctx, alice.ID, alice.ID, "x"), ErrPasswordTooShort)

	suite.Require().NoError(suite.users.ChangePassword(suite.ctx, alice.ID, alice.ID, "newpassword"))

	_, err := suite.auth.Login(suite.ctx, LoginInput{Username: "alice", Password: "password123"})
	suite.ErrorIs(err, ErrInvalidCredentials)
	_, err = suite.auth.Login(suite.ctx, LoginInput{Username: "alice", Password: "newpassword"})
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestDeleteUser() {
	alice := suite.signup("alice")
	bob := suite.signup("bob")

	suite.ErrorIs(suite.users.Delete(suite.ctx, bob.ID, alice.ID), authz.ErrForbidden)

	suite.Require().NoError(suite.users.Delete(suite.ctx, alice.ID, alice.ID))
	suite.ErrorIs(suite.users.Delete(suite.ctx, alice.ID, alice.ID), ErrUserNotFound)

	_, err := suite.users.FindByUsername(suite.ctx, "alice")
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *ServiceTestSuite) TestGetInfo() {
	alice := suite.signup("alice")
	bob := suite.signup("bob")

	user, full, err := suite.users.GetInfo(suite.ctx, alice.ID, alice.ID)
	suite.Require().NoError(err)
	suite.True(full)
	suite.Equal(alice.ID, user.ID)

	user, full, err = suite.users.GetInfo(suite.ctx, bob.ID, alice.ID)
	suite.Require().NoError(err)
	suite.False(full)
	suite.Equal("alice", user.Username)

	_, _, err = suite.users.GetInfo(suite.ctx, alice.ID, 9999)
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *ServiceTestSuite) TestFindByUsername() {
	alice := suite.signup("alice")

	user, err := suite.users.FindByUsername(suite.ctx, "alice")
	suite.Require().NoError(err)
	suite.Equal(alice.ID, user.ID)

	_, err = suite.users.FindByUsername(suite.ctx, "nobody")
	suite.ErrorIs(err, ErrUserNotFound)
}
