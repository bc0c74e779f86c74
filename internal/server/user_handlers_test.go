package server

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userBody struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

func TestGetUsers_AndSearch(t *testing.T) {
	env := setupTestServer(t)
	ann := env.signup(t, "ann@example.com", "Ann Lee")
	env.signup(t, "bob@example.com", "Bob Stone")

	resp := env.json(t, http.MethodGet, "/users", nil, "")
	require.Equal(t, http.StatusOK, resp.status)
	var all []userBody
	resp.decode(t, &all)
	assert.Len(t, all, 2)

	for _, path := range []string{"/users?user=ann", "/users/search?user=LEE"} {
		resp = env.json(t, http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, resp.status, path)
		var found []userBody
		resp.decode(t, &found)
		require.Len(t, found, 1, path)
		assert.Equal(t, ann.User.ID, found[0].ID)
	}

	resp = env.json(t, http.MethodGet, "/users/search", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)

	resp = env.json(t, http.MethodGet, "/users/"+ann.User.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.status)

	resp = env.json(t, http.MethodGet, "/users/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.status)
}

func TestUpdateUser_PresenceAware(t *testing.T) {
	env := setupTestServer(t)
	ann := env.signup(t, "ann@example.com", "Ann")
	path := "/users/" + ann.User.ID

	resp := env.json(t, http.MethodPatch, path, map[string]string{"username": "annie"}, ann.Token)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	var got userBody
	resp.decode(t, &got)
	assert.Equal(t, "annie", got.Username)
	assert.Equal(t, "Ann", got.Name)

	// An explicit empty string clears the optional field.
	resp = env.json(t, http.MethodPatch, path, map[string]string{"username": ""}, ann.Token)
	require.Equal(t, http.StatusOK, resp.status)
	got = userBody{}
	resp.decode(t, &got)
	assert.Empty(t, got.Username)

	// Required fields cannot be blanked.
	resp = env.json(t, http.MethodPatch, path, map[string]string{"name": ""}, ann.Token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)

	// The password survives updates that do not carry one.
	resp = env.json(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "ann@example.com", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusOK, resp.status)

	// A new password is hashed and usable.
	resp = env.json(t, http.MethodPatch, path, map[string]string{"password": "n3w"}, ann.Token)
	require.Equal(t, http.StatusOK, resp.status)
	resp = env.json(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "ann@example.com", "password": "n3w",
	}, "")
	assert.Equal(t, http.StatusOK, resp.status)
}

func TestUpdateUser_Authorization(t *testing.T) {
	env := setupTestServer(t)
	ann := env.signup(t, "ann@example.com", "Ann")
	bob := env.signup(t, "bob@example.com", "Bob")

	resp := env.json(t, http.MethodPatch, "/users/"+ann.User.ID, map[string]string{"name": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = env.json(t, http.MethodPatch, "/users/"+ann.User.ID, map[string]string{"name": "x"}, bob.Token)
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = env.json(t, http.MethodPatch, "/users/"+bob.User.ID, map[string]string{"email": "ann@example.com"}, bob.Token)
	assert.Equal(t, http.StatusConflict, resp.status)
}

func TestSignup_MultipartWithPicture(t *testing.T) {
	env := setupTestServer(t)

	resp := env.multipart(t, http.MethodPost, "/auth/signup", map[string][]string{
		"email":    {"pic@example.com"},
		"password": {"password123"},
		"name":     {"Pic"},
	}, &formFile{field: "profilePicture", name: "me.png", contentType: "image/png", data: []byte("fake-png")}, "")
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))

	var out signedUp
	resp.decode(t, &out)
	key := "profile_pictures/" + out.User.ID + ".png"
	assert.Equal(t, "http://localhost/media/"+key, out.User.ProfilePicture)

	data, err := os.ReadFile(filepath.Join(env.media, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "fake-png", string(data))

	// The local backend serves the file.
	resp = env.json(t, http.MethodGet, "/media/"+key, nil, "")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "fake-png", string(resp.body))
}

func TestDeleteUser_Cascade(t *testing.T) {
	env := setupTestServer(t)
	ann := env.signup(t, "ann@example.com", "Ann")
	bob := env.signup(t, "bob@example.com", "Bob")

	resp := env.multipart(t, http.MethodPost, "/posts/add", map[string][]string{
		"title": {"Sunset"}, "description": {"Nice"},
	}, &formFile{field: "mediaUrl", name: "s.jpg", contentType: "image/jpeg", data: []byte("jpg")}, ann.Token)
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var post postBody
	resp.decode(t, &post)

	resp = env.json(t, http.MethodDelete, "/users/"+ann.User.ID, nil, bob.Token)
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = env.json(t, http.MethodDelete, "/users/"+ann.User.ID, nil, ann.Token)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))

	resp = env.json(t, http.MethodGet, "/posts/"+post.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.status)
	resp = env.json(t, http.MethodGet, "/users/"+ann.User.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.status)

	_, err := os.Stat(filepath.Join(env.media, "user_posts", ann.User.ID, post.ID+".jpg"))
	assert.True(t, os.IsNotExist(err))
}
