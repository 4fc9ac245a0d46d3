package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cohort-chat-service/internal/auth"
	"cohort-chat-service/internal/mocks"
	"cohort-chat-service/internal/models"
	"cohort-chat-service/internal/repositories"
)

func setupGroupRouter(handler *GroupHandler, identity auth.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetIdentity(c, identity)
		c.Next()
	})
	r.POST("/api/v1/groups", handler.CreateGroup)
	r.GET("/api/v1/groups", handler.ListGroups)
	r.POST("/api/v1/groups/:group_id/members", handler.AddMember)
	r.DELETE("/api/v1/groups/:group_id/members/:user_id", handler.RemoveMember)
	r.DELETE("/api/v1/groups/:group_id", handler.DeleteGroup)
	return r
}

var adminIdentity = auth.Identity{UserID: 1, Email: "admin@example.com", Role: models.RoleAdmin}

func TestCreateGroupSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.UserRepositoryMock), nil, nil)
	router := setupGroupRouter(handler, adminIdentity)

	groupRepo.On("CreateGroup", mock.Anything, "Cohort-1").Return(models.Group{ID: 5, Name: "Cohort-1"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups", bytes.NewBufferString(`{"name":"Cohort-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestCreateGroupEmptyName(t *testing.T) {
	handler := NewGroupHandler(new(mocks.GroupRepositoryMock), new(mocks.UserRepositoryMock), nil, nil)
	router := setupGroupRouter(handler, adminIdentity)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups", bytes.NewBufferString(`{"name":"   "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "validation", body["kind"])
}

func TestListGroupsAdminSeesAll(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.UserRepositoryMock), nil, nil)
	router := setupGroupRouter(handler, adminIdentity)

	groupRepo.On("ListGroups", mock.Anything).Return([]models.Group{{ID: 1}, {ID: 2}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestListGroupsMemberView(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.UserRepositoryMock), nil, nil)
	router := setupGroupRouter(handler, auth.Identity{UserID: 7, Role: models.RolePremium})

	groupRepo.On("ListGroupsForUser", mock.Anything, 7).Return([]models.Group{{ID: 3}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestAddMemberSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewGroupHandler(groupRepo, userRepo, nil, nil)
	router := setupGroupRouter(handler, adminIdentity)

	groupRepo.On("GetGroup", mock.Anything, 9).Return(models.Group{ID: 9, Name: "Cohort-1"}, nil).Once()
	userRepo.On("FindByEmail", mock.Anything, "u1@example.com").Return(models.User{ID: 42, Email: "u1@example.com"}, nil).Once()
	groupRepo.On("AddMember", mock.Anything, 9, 42).Return(nil).Once()
	groupRepo.On("ListMembers", mock.Anything, 9).Return([]models.GroupMember{{GroupID: 9, UserID: 42}}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/9/members", bytes.NewBufferString(`{"email":"u1@example.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	groupRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestAddMemberUnknownEmail(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewGroupHandler(groupRepo, userRepo, nil, nil)
	router := setupGroupRouter(handler, adminIdentity)

	groupRepo.On("GetGroup", mock.Anything, 9).Return(models.Group{ID: 9}, nil).Once()
	userRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/9/members", bytes.NewBufferString(`{"email":"ghost@example.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "not_found", body["kind"])
}

func TestAddMemberUnknownGroup(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.UserRepositoryMock), nil, nil)
	router := setupGroupRouter(handler, adminIdentity)

	groupRepo.On("GetGroup", mock.Anything, 404).Return(models.Group{}, repositories.ErrGroupNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/404/members", bytes.NewBufferString(`{"email":"u1@example.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveMemberSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.UserRepositoryMock), nil, nil)
	router := setupGroupRouter(handler, adminIdentity)

	groupRepo.On("GetGroup", mock.Anything, 9).Return(models.Group{ID: 9}, nil).Once()
	groupRepo.On("RemoveMember", mock.Anything, 9, 42).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/groups/9/members/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestDeleteGroupSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.UserRepositoryMock), nil, nil)
	router := setupGroupRouter(handler, adminIdentity)

	groupRepo.On("DeleteGroup", mock.Anything, 9).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/groups/9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestDeleteGroupNotFound(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.UserRepositoryMock), nil, nil)
	router := setupGroupRouter(handler, adminIdentity)

	groupRepo.On("DeleteGroup", mock.Anything, 404).Return(repositories.ErrGroupNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/groups/404", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGroupInvalidIDParam(t *testing.T) {
	handler := NewGroupHandler(new(mocks.GroupRepositoryMock), new(mocks.UserRepositoryMock), nil, nil)
	router := setupGroupRouter(handler, adminIdentity)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/groups/bad", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
