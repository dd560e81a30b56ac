package handlers

import (
	"net/http"

	"github.com/yukikurage/earth-fighter-api/internal/constants"
	"github.com/yukikurage/earth-fighter-api/internal/dto"
)

func (suite *HandlerTestSuite) TestCreateOrganization_Success() {
	alice, token := suite.createUser("alice")

	org := suite.createOrganization("Smith family", token)
	suite.Equal("Smith family", org.Name)
	suite.Equal("family", org.Type)
	suite.Equal(alice.ID, org.CreatorID)
	suite.Len(org.InviteCode, constants.InviteCodeLength)

	w := suite.request(http.MethodGet, orgPath(org.ID, "members"), nil, token)
	suite.Require().Equal(http.StatusOK, w.Code)
	var members dto.OrganizationMembersResponse
	suite.decode(w, &members)
	suite.Require().Len(members.Members, 1)
	suite.Equal(alice.ID, members.Members[0].User.ID)
}

func (suite *HandlerTestSuite) TestCreateOrganization_Validation() {
	_, token := suite.createUser("alice")
	suite.createOrganization("Taken", token)

	w := suite.request(http.MethodPost, "/api/organizations", map[string]string{"name": "", "type": "family"}, token)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/organizations", map[string]string{"name": "Guild", "type": "guild"}, token)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/organizations", map[string]string{"name": "Taken", "type": "company"}, token)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request(http.MethodPost, "/api/organizations", map[string]string{"name": "Guild", "type": "family"}, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestListOrganizations() {
	_, aliceToken := suite.createUser("alice")
	_, bobToken := suite.createUser("bob")

	home := suite.createOrganization("Home", aliceToken)
	suite.createOrganization("Work", bobToken)

	w := suite.request(http.MethodGet, "/api/organizations", nil, aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	var list dto.OrganizationListResponse
	suite.decode(w, &list)
	suite.Require().Len(list.Organizations, 1)
	suite.Equal(home.ID, list.Organizations[0].ID)
}

func (suite *HandlerTestSuite) TestJoinOrganization() {
	_, aliceToken := suite.createUser("alice")
	bob, bobToken := suite.createUser("bob")
	org := suite.createOrganization("Home", aliceToken)

	wrongCode := "zzzzzz"
	if org.InviteCode == wrongCode {
		wrongCode = "yyyyyy"
	}
	w := suite.request(http.MethodPost, orgPath(org.ID, "join"), map[string]string{"invite_code": wrongCode}, bobToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPost, orgPath(org.ID, "join"), map[string]string{"invite_code": ""}, bobToken)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, orgPath(9999, "join"), map[string]string{"invite_code": org.InviteCode}, bobToken)
	suite.Equal(http.StatusNotFound, w.Code)

	suite.joinOrganization(org, bobToken)

	w = suite.request(http.MethodPost, orgPath(org.ID, "join"), map[string]string{"invite_code": org.InviteCode}, bobToken)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request(http.MethodGet, orgPath(org.ID, "members"), nil, bobToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	var members dto.OrganizationMembersResponse
	suite.decode(w, &members)
	suite.Require().Len(members.Members, 2)
	suite.Equal(bob.ID, members.Members[1].User.ID)
}

func (suite *HandlerTestSuite) TestGetOrganization_MembersOnly() {
	_, aliceToken := suite.createUser("alice")
	_, bobToken := suite.createUser("bob")
	org := suite.createOrganization("Home", aliceToken)

	w := suite.request(http.MethodGet, orgPath(org.ID), nil, aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	var got dto.OrganizationDTO
	suite.decode(w, &got)
	suite.Equal(org.InviteCode, got.InviteCode)

	w = suite.request(http.MethodGet, orgPath(org.ID), nil, bobToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodGet, orgPath(org.ID, "members"), nil, bobToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodGet, orgPath(9999), nil, aliceToken)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestLeaveOrganization() {
	_, aliceToken := suite.createUser("alice")
	_, bobToken := suite.createUser("bob")
	org := suite.createOrganization("Home", aliceToken)

	w := suite.request(http.MethodPost, orgPath(org.ID, "leave"), nil, bobToken)
	suite.Equal(http.StatusForbidden, w.Code)

	suite.joinOrganization(org, bobToken)

	w = suite.request(http.MethodPost, orgPath(org.ID, "leave"), nil, bobToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, orgPath(org.ID), nil, bobToken)
	suite.Equal(http.StatusForbidden, w.Code)

	// The creator may leave as well.
	w = suite.request(http.MethodPost, orgPath(org.ID, "leave"), nil, aliceToken)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteOrganization() {
	_, aliceToken := suite.createUser("alice")
	_, bobToken := suite.createUser("bob")
	org := suite.createOrganization("Home", aliceToken)
	suite.joinOrganization(org, bobToken)

	w := suite.request(http.MethodDelete, orgPath(org.ID), nil, bobToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodDelete, orgPath(org.ID), nil, aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodDelete, orgPath(org.ID), nil, aliceToken)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, orgPath(org.ID), nil, bobToken)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/organizations", nil, bobToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.OrganizationListResponse
	suite.decode(w, &list)
	suite.Empty(list.Organizations)
}
