package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatterbox/backend/internal/api/handler"
	"chatterbox/backend/internal/chat"
	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/storage"
)

var testSecret = []byte("test-secret")

func newRouter(chatMock *MockChat, storeMock *MockStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewHandler(chatMock, storeMock, nil, testSecret)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	authed := r.Group("/", h.AuthRequired())
	authed.GET("/auth/me", h.Me)
	authed.POST("/messages", h.SendMessage)
	authed.GET("/conversations/:id/messages", h.GetConversationMessages)
	authed.POST("/messages/read", h.MarkMessagesRead)
	authed.GET("/messages/unread/count", h.GetUnreadCount)
	return r
}

func tokenFor(userID string) string {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	return token
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSendMessage_Created(t *testing.T) {
	chatMock := new(MockChat)
	r := newRouter(chatMock, new(MockStore))

	msg := &models.Message{ID: "m1", ConversationID: "conv-1", SenderID: "user-a", Content: "hello"}
	chatMock.On("Send", mock.Anything, "user-a", chat.SendInput{
		ConversationID: "conv-1",
		Content:        "hello",
	}).Return(msg, nil)

	w := doJSON(r, http.MethodPost, "/messages", tokenFor("user-a"), gin.H{
		"conversation_id": "conv-1",
		"content":         "hello",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := envelope(t, w)
	assert.Equal(t, false, body["error"])
	assert.Equal(t, "Message sent successfully", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "m1", data["message"].(map[string]interface{})["id"])
}

func TestSendMessage_NotParticipant(t *testing.T) {
	chatMock := new(MockChat)
	r := newRouter(chatMock, new(MockStore))

	chatMock.On("Send", mock.Anything, "stranger", mock.Anything).Return(nil, chat.ErrNotParticipant)

	w := doJSON(r, http.MethodPost, "/messages", tokenFor("stranger"), gin.H{
		"conversation_id": "conv-1",
		"content":         "hello",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	body := envelope(t, w)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "You are not a participant in this conversation", body["message"])
}

func TestSendMessage_MissingFields(t *testing.T) {
	chatMock := new(MockChat)
	r := newRouter(chatMock, new(MockStore))

	w := doJSON(r, http.MethodPost, "/messages", tokenFor("user-a"), gin.H{"content": "hello"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	chatMock.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessage_RequiresAuth(t *testing.T) {
	r := newRouter(new(MockChat), new(MockStore))

	w := doJSON(r, http.MethodPost, "/messages", "", gin.H{
		"conversation_id": "conv-1",
		"content":         "hello",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetConversationMessages_MarksRead(t *testing.T) {
	chatMock := new(MockChat)
	r := newRouter(chatMock, new(MockStore))

	messages := []models.Message{{ID: "m2"}, {ID: "m1"}}
	chatMock.On("RecentMessages", mock.Anything, "conv-1", "user-b", 20).Return(messages, nil)
	chatMock.On("MarkRead", mock.Anything, []string{"m2", "m1"}, "user-b").Return(nil)

	w := doJSON(r, http.MethodGet, "/conversations/conv-1/messages", tokenFor("user-b"), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	chatMock.AssertExpectations(t)
}

func TestGetConversationMessages_LimitParam(t *testing.T) {
	chatMock := new(MockChat)
	r := newRouter(chatMock, new(MockStore))

	chatMock.On("RecentMessages", mock.Anything, "conv-1", "user-b", 5).Return([]models.Message{}, nil)
	chatMock.On("MarkRead", mock.Anything, []string{}, "user-b").Return(nil)

	w := doJSON(r, http.MethodGet, "/conversations/conv-1/messages?limit=5", tokenFor("user-b"), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	chatMock.AssertExpectations(t)
}

func TestGetUnreadCount(t *testing.T) {
	chatMock := new(MockChat)
	r := newRouter(chatMock, new(MockStore))

	chatMock.On("UnreadCount", mock.Anything, "user-b").Return(int64(4))

	w := doJSON(r, http.MethodGet, "/messages/unread/count", tokenFor("user-b"), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := envelope(t, w)
	assert.Equal(t, float64(4), body["data"].(map[string]interface{})["count"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	storeMock := new(MockStore)
	r := newRouter(new(MockChat), storeMock)

	storeMock.On("FindUserByEmail", mock.Anything, "a@example.com").
		Return(&models.User{ID: "user-a", Email: "a@example.com"}, nil)

	w := doJSON(r, http.MethodPost, "/auth/register", "", gin.H{
		"email":        "a@example.com",
		"password":     "hunter2hunter2",
		"display_name": "Alice",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	storeMock.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestLogin_UnknownUser(t *testing.T) {
	storeMock := new(MockStore)
	r := newRouter(new(MockChat), storeMock)

	storeMock.On("FindUserByEmail", mock.Anything, "ghost@example.com").Return(nil, storage.ErrNotFound)

	w := doJSON(r, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "ghost@example.com",
		"password": "whatever",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := envelope(t, w)
	assert.Equal(t, "Invalid credentials", body["message"])
}

func TestMe_ReturnsUserAndConversations(t *testing.T) {
	storeMock := new(MockStore)
	r := newRouter(new(MockChat), storeMock)

	storeMock.On("FindUserByID", mock.Anything, "user-a").
		Return(&models.User{ID: "user-a", DisplayName: "Alice"}, nil)
	storeMock.On("ConversationsForUser", mock.Anything, "user-a").
		Return([]models.Conversation{{ID: "conv-1"}}, nil)
	storeMock.On("LastMessage", mock.Anything, "conv-1").
		Return(&models.Message{ID: "m9", ConversationID: "conv-1", Content: "latest"}, nil)

	w := doJSON(r, http.MethodGet, "/auth/me", tokenFor("user-a"), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := envelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "user-a", data["user"].(map[string]interface{})["id"])
	conversations := data["conversations"].([]interface{})
	require.Len(t, conversations, 1)
	preview := conversations[0].(map[string]interface{})["messages"].([]interface{})
	assert.Equal(t, "latest", preview[0].(map[string]interface{})["content"])
}
