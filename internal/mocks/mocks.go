package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"cohort-chat-service/internal/auth"
	"cohort-chat-service/internal/models"
	"cohort-chat-service/internal/repositories"
	"cohort-chat-service/internal/storage"
	"cohort-chat-service/internal/ws"
)

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) CreateGroup(ctx context.Context, name string) (models.Group, error) {
	args := m.Called(ctx, name)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, groupID int) (models.Group, error) {
	args := m.Called(ctx, groupID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) ListGroups(ctx context.Context) ([]models.Group, error) {
	args := m.Called(ctx)
	var groups []models.Group
	if val := args.Get(0); val != nil {
		groups = val.([]models.Group)
	}
	return groups, args.Error(1)
}

func (m *GroupRepositoryMock) ListGroupsForUser(ctx context.Context, userID int) ([]models.Group, error) {
	args := m.Called(ctx, userID)
	var groups []models.Group
	if val := args.Get(0); val != nil {
		groups = val.([]models.Group)
	}
	return groups, args.Error(1)
}

func (m *GroupRepositoryMock) DeleteGroup(ctx context.Context, groupID int) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) AddMember(ctx context.Context, groupID int, userID int) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) RemoveMember(ctx context.Context, groupID int, userID int) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) ListMembers(ctx context.Context, groupID int) ([]models.GroupMember, error) {
	args := m.Called(ctx, groupID)
	var members []models.GroupMember
	if val := args.Get(0); val != nil {
		members = val.([]models.GroupMember)
	}
	return members, args.Error(1)
}

func (m *GroupRepositoryMock) IsMember(ctx context.Context, groupID int, userID int) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

type GroupMessageRepositoryMock struct {
	mock.Mock
}

func (m *GroupMessageRepositoryMock) CreateMessage(ctx context.Context, groupID int, senderID int, text string, media *models.Media) (models.GroupMessage, error) {
	args := m.Called(ctx, groupID, senderID, text, media)
	var msg models.GroupMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.GroupMessage)
	}
	return msg, args.Error(1)
}

func (m *GroupMessageRepositoryMock) ListMessages(ctx context.Context, groupID int, page int, limit int) ([]models.GroupMessage, error) {
	args := m.Called(ctx, groupID, page, limit)
	var msgs []models.GroupMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.GroupMessage)
	}
	return msgs, args.Error(1)
}

func (m *GroupMessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.GroupMessage, error) {
	args := m.Called(ctx, messageID)
	var msg models.GroupMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.GroupMessage)
	}
	return msg, args.Error(1)
}

func (m *GroupMessageRepositoryMock) DeleteMessage(ctx context.Context, messageID int) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) FindByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

type AuthorizerMock struct {
	mock.Mock
}

func (m *AuthorizerMock) CanAccessGroup(ctx context.Context, id auth.Identity, groupID int) (auth.Access, error) {
	args := m.Called(ctx, id, groupID)
	var access auth.Access
	if val := args.Get(0); val != nil {
		access = val.(auth.Access)
	}
	return access, args.Error(1)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) BroadcastMessageCreated(groupID int, msg models.GroupMessage) {
	m.Called(groupID, msg)
}

func (m *BroadcasterMock) BroadcastMessageDeleted(groupID int, messageID int) {
	m.Called(groupID, messageID)
}

type MediaStoreMock struct {
	mock.Mock
}

func (m *MediaStoreMock) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (models.Media, error) {
	args := m.Called(ctx, filename, reader, size, contentType)
	var media models.Media
	if val := args.Get(0); val != nil {
		media = val.(models.Media)
	}
	return media, args.Error(1)
}

var _ repositories.GroupRepository = (*GroupRepositoryMock)(nil)
var _ repositories.GroupMessageRepository = (*GroupMessageRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ storage.MediaStore = (*MediaStoreMock)(nil)
var _ ws.Broadcaster = (*BroadcasterMock)(nil)
var _ auth.MembershipChecker = (*GroupRepositoryMock)(nil)
