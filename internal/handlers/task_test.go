package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/yukikurage/earth-fighter-api/internal/dto"
	"github.com/yukikurage/earth-fighter-api/internal/models"
)

// Helper function to set up a publisher and a second member in one organization
func (suite *HandlerTestSuite) setupTeam() (org dto.OrganizationDTO, publisherToken string, worker dto.UserDTO, workerToken string) {
	_, publisherToken = suite.createUser("publisher")
	worker, workerToken = suite.createUser("worker")
	org = suite.createOrganization("Team", publisherToken)
	suite.joinOrganization(org, workerToken)
	return org, publisherToken, worker, workerToken
}

func (suite *HandlerTestSuite) transition(taskID uint64, action, token string, body interface{}) (dto.TaskDTO, int) {
	w := suite.request(http.MethodPost, taskPath(taskID, action), body, token)
	var task dto.TaskDTO
	if w.Code == http.StatusOK {
		suite.decode(w, &task)
	}
	return task, w.Code
}

func (suite *HandlerTestSuite) TestCreateTask_Success() {
	org, token, _, _ := suite.setupTeam()

	task := suite.publishTask(org.ID, token)
	suite.Equal("Walk the dog", task.Name)
	suite.Equal(models.TaskStatusPending, task.Status)
	suite.Nil(task.ReceiverID)
	suite.Nil(task.CompletedAt)
	suite.Equal(int64(3600), task.TimeLimitSeconds)
	suite.Equal(org.ID, task.OrganizationID)
}

func (suite *HandlerTestSuite) TestCreateTask_Failures() {
	org, _, _, _ := suite.setupTeam()
	_, outsiderToken := suite.createUser("outsider")

	w := suite.request(http.MethodPost, "/api/tasks", map[string]interface{}{"name": "Sneak in", "organization_id": org.ID}, outsiderToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPost, "/api/tasks", map[string]interface{}{"name": "No org"}, outsiderToken)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestTaskLifecycle_Completed() {
	org, publisherToken, worker, workerToken := suite.setupTeam()
	task := suite.publishTask(org.ID, publisherToken)

	accepted, code := suite.transition(task.ID, "accept", workerToken, nil)
	suite.Require().Equal(http.StatusOK, code)
	suite.Equal(models.TaskStatusInProgress, accepted.Status)
	suite.Require().NotNil(accepted.ReceiverID)
	suite.Equal(worker.ID, *accepted.ReceiverID)

	_, code = suite.transition(task.ID, "accept", publisherToken, nil)
	suite.Equal(http.StatusConflict, code)

	_, code = suite.transition(task.ID, "submit", publisherToken, nil)
	suite.Equal(http.StatusForbidden, code)

	submitted, code := suite.transition(task.ID, "submit", workerToken, nil)
	suite.Require().Equal(http.StatusOK, code)
	suite.Equal(models.TaskStatusToBeConfirmed, submitted.Status)

	_, code = suite.transition(task.ID, "confirm", workerToken, nil)
	suite.Equal(http.StatusForbidden, code)

	confirmed, code := suite.transition(task.ID, "confirm", publisherToken, nil)
	suite.Require().Equal(http.StatusOK, code)
	suite.Equal(models.TaskStatusCompleted, confirmed.Status)
	suite.NotNil(confirmed.CompletedAt)

	_, code = suite.transition(task.ID, "abandon", workerToken, nil)
	suite.Equal(http.StatusConflict, code)

	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.TaskTransitions().WithLabelValues("accept", "ok")))
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.TaskTransitions().WithLabelValues("confirm", "ok")))
}

func (suite *HandlerTestSuite) TestConfirmTask_Failed() {
	org, publisherToken, _, workerToken := suite.setupTeam()
	task := suite.publishTask(org.ID, publisherToken)

	_, code := suite.transition(task.ID, "accept", workerToken, nil)
	suite.Require().Equal(http.StatusOK, code)
	_, code = suite.transition(task.ID, "submit", workerToken, nil)
	suite.Require().Equal(http.StatusOK, code)

	confirmed, code := suite.transition(task.ID, "confirm", publisherToken, map[string]bool{"success": false})
	suite.Require().Equal(http.StatusOK, code)
	suite.Equal(models.TaskStatusFailed, confirmed.Status)
}

func (suite *HandlerTestSuite) TestConfirmTask_ChunkedFailedBody() {
	org, publisherToken, _, workerToken := suite.setupTeam()
	task := suite.publishTask(org.ID, publisherToken)

	_, code := suite.transition(task.ID, "accept", workerToken, nil)
	suite.Require().Equal(http.StatusOK, code)
	_, code = suite.transition(task.ID, "submit", workerToken, nil)
	suite.Require().Equal(http.StatusOK, code)

	// A reader of unknown length is sent without Content-Length.
	body := io.MultiReader(strings.NewReader(`{"success": false}`))
	req := httptest.NewRequest(http.MethodPost, taskPath(task.ID, "confirm"), body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+publisherToken)
	req.TransferEncoding = []string{"chunked"}
	suite.Require().Equal(int64(-1), req.ContentLength)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var confirmed dto.TaskDTO
	suite.decode(w, &confirmed)
	suite.Equal(models.TaskStatusFailed, confirmed.Status)
}

func (suite *HandlerTestSuite) TestConfirmTask_MalformedBody() {
	org, publisherToken, _, workerToken := suite.setupTeam()
	task := suite.publishTask(org.ID, publisherToken)

	_, code := suite.transition(task.ID, "accept", workerToken, nil)
	suite.Require().Equal(http.StatusOK, code)
	_, code = suite.transition(task.ID, "submit", workerToken, nil)
	suite.Require().Equal(http.StatusOK, code)

	_, code = suite.transition(task.ID, "confirm", publisherToken, map[string]string{"success": "nope"})
	suite.Equal(http.StatusBadRequest, code)

	w := suite.request(http.MethodGet, taskPath(task.ID), nil, publisherToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	var stored dto.TaskDTO
	suite.decode(w, &stored)
	suite.Equal(models.TaskStatusToBeConfirmed, stored.Status)
}

func (suite *HandlerTestSuite) TestAbandonTask_KeepsReceiver() {
	org, publisherToken, worker, workerToken := suite.setupTeam()
	task := suite.publishTask(org.ID, publisherToken)

	_, code := suite.transition(task.ID, "abandon", workerToken, nil)
	suite.Equal(http.StatusForbidden, code)

	_, code = suite.transition(task.ID, "accept", workerToken, nil)
	suite.Require().Equal(http.StatusOK, code)

	abandoned, code := suite.transition(task.ID, "abandon", workerToken, nil)
	suite.Require().Equal(http.StatusOK, code)
	suite.Equal(models.TaskStatusAbandoned, abandoned.Status)
	suite.Require().NotNil(abandoned.ReceiverID)
	suite.Equal(worker.ID, *abandoned.ReceiverID)

	_, code = suite.transition(task.ID, "accept", workerToken, nil)
	suite.Equal(http.StatusConflict, code)
}

func (suite *HandlerTestSuite) TestGetAndListTasks_MembersOnly() {
	org, publisherToken, _, workerToken := suite.setupTeam()
	_, outsiderToken := suite.createUser("outsider")
	first := suite.publishTask(org.ID, publisherToken)
	suite.publishTask(org.ID, publisherToken)

	w := suite.request(http.MethodGet, taskPath(first.ID), nil, workerToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	var got dto.TaskDTO
	suite.decode(w, &got)
	suite.Equal(first.ID, got.ID)

	w = suite.request(http.MethodGet, taskPath(first.ID), nil, outsiderToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodGet, taskPath(9999), nil, workerToken)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, orgPath(org.ID, "tasks"), nil, workerToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.TaskListResponse
	suite.decode(w, &list)
	suite.Len(list.Tasks, 2)

	w = suite.request(http.MethodGet, orgPath(org.ID, "tasks"), nil, outsiderToken)
	suite.Equal(http.StatusForbidden, w.Code)

	_, code := suite.transition(first.ID, "accept", outsiderToken, nil)
	suite.Equal(http.StatusForbidden, code)
}

func (suite *HandlerTestSuite) TestDeleteTask() {
	org, publisherToken, _, workerToken := suite.setupTeam()
	task := suite.publishTask(org.ID, publisherToken)

	w := suite.request(http.MethodDelete, taskPath(task.ID), nil, workerToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodDelete, taskPath(task.ID), nil, publisherToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodDelete, taskPath(task.ID), nil, publisherToken)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, taskPath(task.ID), nil, publisherToken)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodDelete, "/api/tasks/abc", nil, publisherToken)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestGenerateDrafts() {
	org, publisherToken, _, _ := suite.setupTeam()
	_, outsiderToken := suite.createUser("outsider")

	w := suite.request(http.MethodPost, "/api/tasks/drafts", map[string]interface{}{
		"organization_id": org.ID,
		"text":            "Chores for this weekend",
	}, publisherToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	var resp dto.TaskDraftsResponse
	suite.decode(w, &resp)
	suite.Require().Len(resp.Drafts, 2)
	suite.Equal("Wash the dishes", resp.Drafts[0].Name)

	w = suite.request(http.MethodGet, orgPath(org.ID, "tasks"), nil, publisherToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.TaskListResponse
	suite.decode(w, &list)
	suite.Empty(list.Tasks)

	w = suite.request(http.MethodPost, "/api/tasks/drafts", map[string]interface{}{
		"organization_id": org.ID,
		"text":            "Chores",
	}, outsiderToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPost, "/api/tasks/drafts", map[string]interface{}{
		"organization_id": org.ID,
		"text":            "  ",
	}, publisherToken)
	suite.Equal(http.StatusBadRequest, w.Code)
}
