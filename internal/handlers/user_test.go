package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/yukikurage/earth-fighter-api/internal/dto"
)

func (suite *HandlerTestSuite) TestGetUser_FullOnlyForSelf() {
	alice, aliceToken := suite.createUser("alice")
	bob, _ := suite.createUser("bob")

	w := suite.request(http.MethodGet, userPath(alice.ID), nil, aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	var self map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &self))
	suite.Contains(self, "created_at")

	w = suite.request(http.MethodGet, userPath(bob.ID), nil, aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	var other map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &other))
	suite.Equal("bob", other["username"])
	suite.NotContains(other, "created_at")

	w = suite.request(http.MethodGet, userPath(9999), nil, aliceToken)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/users/abc", nil, aliceToken)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestFindUser() {
	_, token := suite.createUser("alice")
	bob, _ := suite.createUser("bob")

	w := suite.request(http.MethodGet, "/api/users?username=bob", nil, token)
	suite.Require().Equal(http.StatusOK, w.Code)
	var found dto.UserDTO
	suite.decode(w, &found)
	suite.Equal(bob.ID, found.ID)

	w = suite.request(http.MethodGet, "/api/users?username=carol", nil, token)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/users", nil, token)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestRenameUser() {
	alice, aliceToken := suite.createUser("alice")
	bob, _ := suite.createUser("bob")

	w := suite.request(http.MethodPut, userPath(alice.ID, "username"), map[string]string{"username": "alicia"}, aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	var renamed dto.UserDTO
	suite.decode(w, &renamed)
	suite.Equal("alicia", renamed.Username)

	w = suite.request(http.MethodPut, userPath(bob.ID, "username"), map[string]string{"username": "robert"}, aliceToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPut, userPath(alice.ID, "username"), map[string]string{"username": "bob"}, aliceToken)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestChangePassword() {
	alice, aliceToken := suite.createUser("alice")
	bob, _ := suite.createUser("bob")

	w := suite.request(http.MethodPut, userPath(bob.ID, "password"), map[string]string{"password": "hijacked123"}, aliceToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPut, userPath(alice.ID, "password"), map[string]string{"password": "x"}, aliceToken)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPut, userPath(alice.ID, "password"), map[string]string{"password": "newpassword"}, aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "password123"}, "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.request(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "newpassword"}, "")
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteUser() {
	alice, aliceToken := suite.createUser("alice")
	bob, _ := suite.createUser("bob")

	w := suite.request(http.MethodDelete, userPath(bob.ID), nil, aliceToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodDelete, userPath(alice.ID), nil, aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "password123"}, "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	// The name is free again once its holder is deleted.
	w = suite.request(http.MethodPost, "/api/auth/signup", map[string]string{"username": "alice", "password": "password123"}, "")
	suite.Equal(http.StatusCreated, w.Code)
}
